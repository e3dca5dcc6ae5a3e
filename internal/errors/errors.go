// internal/errors/errors.go
package appErrors

import "fmt"

// ErrMissingRequiredField means a remote record arrived without external_id
// or title. The record is skipped and counted; it never aborts the sync.
type ErrMissingRequiredField struct {
	ExternalID string
	Field      string
}

func (e *ErrMissingRequiredField) Error() string {
	if e.ExternalID == "" {
		return fmt.Sprintf("remote record missing required field %q", e.Field)
	}
	return fmt.Sprintf("remote record %s missing required field %q", e.ExternalID, e.Field)
}

// Helper constructor
func NewMissingRequiredField(externalID, field string) error {
	return &ErrMissingRequiredField{ExternalID: externalID, Field: field}
}

// ErrDuplicateKeyword means a keyword value is already registered, possibly
// under another category. Keyword values are unique across the whole table
// because matching is case-insensitive.
type ErrDuplicateKeyword struct {
	Value string
}

func (e *ErrDuplicateKeyword) Error() string {
	return fmt.Sprintf("keyword %q is already registered", e.Value)
}

func NewDuplicateKeyword(value string) error {
	return &ErrDuplicateKeyword{Value: value}
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrCategoryNotFound is a sentinel error
type ErrCategoryNotFound struct {
	CategoryID int
}

func (e *ErrCategoryNotFound) Error() string {
	return fmt.Sprintf("category with ID %d not found", e.CategoryID)
}

func NewCategoryNotFound(id int) error {
	return &ErrCategoryNotFound{CategoryID: id}
}
