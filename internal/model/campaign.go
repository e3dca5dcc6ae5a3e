// internal/model/campaign.go
package model

import "time"

// Campaign is the local mirror of one remote MailChimp campaign.
//
// ExternalID, Title, Subject, SentAt, ListName, ListID, ContentText and
// ContentHTML come from MailChimp and are overwritten on every sync.
// DisplayName, Hidden and CategoryID belong to the admin: the sync pipeline
// never touches them, except to fill CategoryID while it is still unset.
type Campaign struct {
	ID          int        `db:"id" json:"id"`
	ExternalID  string     `db:"external_id" json:"external_id"`
	Title       string     `db:"title" json:"title"`
	Subject     string     `db:"subject" json:"subject"`
	DisplayName string     `db:"display_name" json:"display_name"`
	ListName    string     `db:"list_name" json:"list_name"`
	ListID      string     `db:"list_id" json:"list_id"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"` // nil = draft, not yet sent
	ContentText string     `db:"content_text" json:"content_text"`
	ContentHTML string     `db:"content_html" json:"content_html"`
	Slug        string     `db:"slug" json:"slug"`
	Hidden      bool       `db:"hidden" json:"hidden"`
	CategoryID  *int       `db:"category_id" json:"category_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Published reports whether the campaign shows up in public archive queries:
// it has been sent and nobody hid it.
func (c *Campaign) Published() bool {
	return c.SentAt != nil && !c.Hidden
}
