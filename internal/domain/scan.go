package domain

// ScanState is the persisted bookkeeping that brackets every scan run.
// LastScanTimestamp is an epoch-millisecond string ("" means never scanned)
// and only ever moves forward, advanced by completed scans.
type ScanState struct {
	LastScanTimestamp    string   `json:"lastScanTimestamp"`
	WhitelistedProviders []string `json:"whitelistedProviders"`
}

// ScanResult summarizes one batch importer run. Errors holds one
// human-readable entry per failed message, in processing order.
type ScanResult struct {
	Success    int      `json:"success"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors"`
}

// Total returns the number of messages accounted for by the result.
func (r ScanResult) Total() int {
	return r.Success + r.Failed + r.Skipped + r.Duplicates
}
