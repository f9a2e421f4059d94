package models

import (
	"time"

	"nmsportal/backend/libs/derive"
)

// SessionSummary is the derived summary of one session file under one unit system.
type SessionSummary struct {
	ID              int64                  `db:"id" json:"id,omitempty"`
	File            string                 `db:"file" json:"file"`
	Units           string                 `db:"units" json:"units"`
	FileModified    time.Time              `db:"file_modified" json:"file_modified"`
	Samples         int                    `db:"samples" json:"samples"`
	DurationS       float64                `db:"duration_s" json:"duration_s"`
	Summary         derive.Summary         `json:"summary"`
	Bindings        map[derive.Role]string `json:"bindings,omitempty"`
	Channels        []string               `json:"channels,omitempty"`
	DefaultChannels []string               `json:"default_channels,omitempty"`
	DerivedAt       time.Time              `db:"derived_at" json:"derived_at"`
}
