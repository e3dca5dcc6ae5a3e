// internal/model/sync_report.go
package model

import "time"

// SyncReport summarizes one sync run. Skipped counts records that could not
// be mirrored (missing external_id/title or a storage failure); every skip
// has a matching entry in Errors so nothing is dropped silently.
type SyncReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Classified int       `json:"classified"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors,omitempty"`
}
