// internal/service/sync_service.go
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailmirror-backend/internal/errors"
	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
	"github.com/unclebandit/mailmirror-backend/internal/model"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
)

type SyncService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CategoryRepo repository.CategoryRepositoryInterface
}

// Sync reconciles a batch of remote records against the local mirror, keyed
// by external_id. New campaigns are created, known ones get their
// remote-sourced fields overwritten, and any campaign still without a
// category is run through the classifier (fill-if-empty: once a category is
// set, by admin or by a previous run, it is frozen).
//
// Per-record failures are logged into the report and the batch carries on;
// the error return is only for failures outside record scope (loading the
// rule snapshot). Running Sync twice with the same input is safe: the second
// run creates nothing.
func (s *SyncService) Sync(records []mailchimp.CampaignRecord) (*model.SyncReport, error) {
	report := &model.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	// One snapshot of the rules per run. Admin edits between runs are picked
	// up naturally; edits during a run are ignored.
	categories, err := s.CategoryRepo.ListWithKeywords()
	if err != nil {
		return nil, fmt.Errorf("loading category rules: %w", err)
	}

	for _, rec := range records {
		if err := s.syncOne(rec, categories, report); err != nil {
			log.Println("⚠️ record skipped:", err)
			report.Skipped++
			report.Errors = append(report.Errors, err.Error())
		}
	}

	report.FinishedAt = time.Now()
	return report, nil
}

func (s *SyncService) syncOne(rec mailchimp.CampaignRecord, categories []*model.Category, report *model.SyncReport) error {
	// external_id and title are the only hard requirements: without them
	// there is no reconciliation key and no slug source.
	if rec.ExternalID == "" {
		return appErrors.NewMissingRequiredField("", "external_id")
	}
	if rec.Title == "" {
		return appErrors.NewMissingRequiredField(rec.ExternalID, "title")
	}

	existing, err := s.CampaignRepo.GetByExternalID(rec.ExternalID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", rec.ExternalID, err)
	}

	c := &model.Campaign{
		ExternalID:  rec.ExternalID,
		Title:       rec.Title,
		Subject:     rec.Subject,
		SentAt:      rec.SentAt,
		ListName:    rec.ListName,
		ListID:      rec.ListID,
		ContentHTML: rec.ContentHTML,
		ContentText: rec.ContentText,
	}

	if existing == nil {
		c.Slug, err = deriveSlug(rec.Title, s.CampaignRepo.SlugExists)
		if err != nil {
			return fmt.Errorf("slug for %s: %w", rec.ExternalID, err)
		}
		if match := Classify(c, categories); match != nil {
			id := match.ID
			c.CategoryID = &id
		}
		if err := s.CampaignRepo.CreateFromRemote(c); err != nil {
			return fmt.Errorf("create %s: %w", rec.ExternalID, err)
		}
		report.Created++
		if c.CategoryID != nil {
			report.Classified++
		}
		return nil
	}

	// Existing mirror: overwrite remote-sourced fields only. Classification
	// is re-evaluated while (and only while) the category is still unset;
	// the repository applies it with COALESCE so an admin edit racing this
	// run still wins.
	var categoryID *int
	if existing.CategoryID == nil {
		if match := Classify(c, categories); match != nil {
			id := match.ID
			categoryID = &id
		}
	}

	filled, err := s.CampaignRepo.UpdateFromRemote(c, categoryID)
	if err != nil {
		return fmt.Errorf("update %s: %w", rec.ExternalID, err)
	}
	report.Updated++
	if filled {
		report.Classified++
	}
	return nil
}
