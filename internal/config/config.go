// Package config loads the application configuration from a yaml file under
// the user config dir, with SMSINGEST_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/arthmitra/sms-ingest/internal/extract"
	"github.com/arthmitra/sms-ingest/internal/smsbox"
)

type Config struct {
	User     UserConfig     `mapstructure:"user"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	BigQuery BigQueryConfig `mapstructure:"bigquery"`
	GCS      GCSConfig      `mapstructure:"gcs"`
	SMS      SMSConfig      `mapstructure:"sms"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Notion   NotionConfig   `mapstructure:"notion"`
	Log      LogConfig      `mapstructure:"log"`

	ConfigPath string `mapstructure:"-"`
}

type UserConfig struct {
	ID string `mapstructure:"id"`
}

type GeminiConfig struct {
	PrimaryKey string `mapstructure:"primary_key"`
	BackupKey  string `mapstructure:"backup_key"`
	Model      string `mapstructure:"model"`
}

type BigQueryConfig struct {
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

type GCSConfig struct {
	// Bucket, when set, mirrors the scan state to GCS instead of the local
	// state file.
	Bucket string `mapstructure:"bucket"`
}

type SMSConfig struct {
	DBPath string `mapstructure:"db_path"`
	// StatePath is where the local scan state lives.
	StatePath string `mapstructure:"state_path"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Credentials returns the Gemini key slots as an extract.Credentials value.
func (c *Config) Credentials() extract.Credentials {
	return extract.Credentials{
		Primary: c.Gemini.PrimaryKey,
		Backup:  c.Gemini.BackupKey,
	}
}

func appDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(base, "sms-ingest"), nil
}

// Load reads the configuration. cfgFile, when non-empty, points at an
// explicit file; otherwise config.yaml under the app data dir is used and a
// missing file is fine, env vars and defaults carry the rest.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	appDir, err := appDataDir()
	if err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(appDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SMSINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key gets a default so env-only overrides survive Unmarshal.
	v.SetDefault("user.id", "")
	v.SetDefault("gemini.primary_key", "")
	v.SetDefault("gemini.backup_key", "")
	v.SetDefault("gemini.model", extract.DefaultModelName)
	v.SetDefault("bigquery.project", "")
	v.SetDefault("gcs.bucket", "")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("bigquery.dataset", "finance")
	v.SetDefault("sms.db_path", smsbox.DefaultDBPath)
	v.SetDefault("sms.state_path", filepath.Join(appDir, "state.json"))
	v.SetDefault("http.port", "8080")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode configuration: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	return cfg, nil
}
