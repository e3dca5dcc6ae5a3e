// internal/model/category.go
package model

// Category is a classification bucket for campaigns. Rank drives both display
// order and classification priority (lower rank first). Categories with
// SmartMatch=false are manual-only buckets and are skipped by the classifier.
type Category struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Rank       int       `db:"rank" json:"rank"`
	SmartMatch bool      `db:"smart_match" json:"smart_match"`
	Keywords   []Keyword `json:"keywords,omitempty"`
}
