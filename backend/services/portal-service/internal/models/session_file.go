package models

import "time"

// SessionFile describes a session export in the data folder.
type SessionFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
