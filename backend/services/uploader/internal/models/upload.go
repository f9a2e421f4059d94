package models

// UploadResult is the outcome of pushing one session file.
type UploadResult struct {
	File    string `json:"file"`
	Lines   int    `json:"lines"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the file could not be loaded or uploaded.
func (r UploadResult) Failed() bool {
	return r.Error != ""
}
