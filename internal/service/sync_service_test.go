package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
	"github.com/unclebandit/mailmirror-backend/internal/model"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
)

// --- In-memory fakes ---

type fakeCampaignRepo struct {
	campaigns []*model.Campaign
	nextID    int
}

func (f *fakeCampaignRepo) find(externalID string) *model.Campaign {
	for _, c := range f.campaigns {
		if c.ExternalID == externalID {
			return c
		}
	}
	return nil
}

func (f *fakeCampaignRepo) GetByExternalID(externalID string) (*model.Campaign, error) {
	if c := f.find(externalID); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCampaignRepo) SlugExists(slug string) (bool, error) {
	for _, c := range f.campaigns {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCampaignRepo) CreateFromRemote(c *model.Campaign) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	cp := *c
	f.campaigns = append(f.campaigns, &cp)
	return nil
}

// UpdateFromRemote mimics the SQL statement: remote-sourced columns
// overwritten, category filled only while unset, everything else untouched.
func (f *fakeCampaignRepo) UpdateFromRemote(c *model.Campaign, categoryID *int) (bool, error) {
	stored := f.find(c.ExternalID)
	if stored == nil {
		return false, nil
	}
	stored.Title = c.Title
	stored.Subject = c.Subject
	stored.ListName = c.ListName
	stored.ListID = c.ListID
	stored.SentAt = c.SentAt
	stored.ContentText = c.ContentText
	stored.ContentHTML = c.ContentHTML
	now := time.Now()
	stored.UpdatedAt = &now

	if stored.CategoryID == nil && categoryID != nil {
		id := *categoryID
		stored.CategoryID = &id
		return true, nil
	}
	return false, nil
}

func (f *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	for _, c := range f.campaigns {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) List(offset, limit int, hidden *bool, categoryID *int) ([]*model.Campaign, int, error) {
	return f.campaigns, len(f.campaigns), nil
}

func (f *fakeCampaignRepo) UpdateEditable(id int, displayName *string, hidden *bool, categoryID *int, clearCategory bool) error {
	return nil
}

func (f *fakeCampaignRepo) GetBySlug(slug string) (*model.Campaign, error) {
	for _, c := range f.campaigns {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) Published(limit int, categoryIDs []int) ([]model.Campaign, error) {
	out := []model.Campaign{}
	for _, c := range f.campaigns {
		if c.Published() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) BySelection(ids []int) ([]model.Campaign, error) {
	return nil, nil
}

var _ repository.CampaignRepositoryInterface = (*fakeCampaignRepo)(nil)

type fakeCategoryRepo struct {
	categories []*model.Category
}

func (f *fakeCategoryRepo) ListWithKeywords() ([]*model.Category, error) { return f.categories, nil }
func (f *fakeCategoryRepo) GetByID(id int) (*model.Category, error)      { return nil, nil }
func (f *fakeCategoryRepo) Create(c *model.Category) error               { return nil }
func (f *fakeCategoryRepo) Update(c *model.Category) error               { return nil }
func (f *fakeCategoryRepo) Delete(id int) error                          { return nil }
func (f *fakeCategoryRepo) CreateKeyword(k *model.Keyword) error         { return nil }
func (f *fakeCategoryRepo) GetKeywordByID(id int) (*model.Keyword, error) {
	return nil, nil
}
func (f *fakeCategoryRepo) UpdateKeyword(k *model.Keyword) error { return nil }
func (f *fakeCategoryRepo) DeleteKeyword(id int) error           { return nil }

var _ repository.CategoryRepositoryInterface = (*fakeCategoryRepo)(nil)

// --- Helpers ---

func newSyncService(categories ...*model.Category) (*SyncService, *fakeCampaignRepo, *fakeCategoryRepo) {
	campaignRepo := &fakeCampaignRepo{}
	categoryRepo := &fakeCategoryRepo{categories: categories}
	return &SyncService{CampaignRepo: campaignRepo, CategoryRepo: categoryRepo}, campaignRepo, categoryRepo
}

func record(externalID, title string) mailchimp.CampaignRecord {
	return mailchimp.CampaignRecord{
		ExternalID: externalID,
		Title:      title,
		Subject:    "Subject of " + title,
		ListName:   "Main list",
		ListID:     "l1",
	}
}

// --- Tests ---

func TestSyncCreatesNewCampaigns(t *testing.T) {
	promos := &model.Category{ID: 7, Name: "Promotions", SmartMatch: true,
		Keywords: []model.Keyword{{Value: "sale", ScopeName: true}}}
	svc, campaignRepo, _ := newSyncService(promos)

	report, err := svc.Sync([]mailchimp.CampaignRecord{
		record("c1", "Summer Sale Event"),
		record("c2", "Quarterly update"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 1, report.Classified)
	assert.Equal(t, 0, report.Skipped)
	assert.NotEmpty(t, report.RunID)

	sale := campaignRepo.find("c1")
	require.NotNil(t, sale)
	assert.Equal(t, "summer-sale-event", sale.Slug)
	require.NotNil(t, sale.CategoryID)
	assert.Equal(t, 7, *sale.CategoryID)

	other := campaignRepo.find("c2")
	require.NotNil(t, other)
	assert.Nil(t, other.CategoryID)
	assert.Empty(t, other.DisplayName)
	assert.False(t, other.Hidden)
}

func TestSyncIsIdempotent(t *testing.T) {
	svc, campaignRepo, _ := newSyncService()
	records := []mailchimp.CampaignRecord{record("c1", "One"), record("c2", "Two")}

	first, err := svc.Sync(records)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	before := make([]model.Campaign, 0, len(campaignRepo.campaigns))
	for _, c := range campaignRepo.campaigns {
		before = append(before, *c)
	}

	second, err := svc.Sync(records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 0, second.Skipped)

	for i, c := range campaignRepo.campaigns {
		assert.Equal(t, before[i].Slug, c.Slug, "slug must stay stable across syncs")
		assert.Equal(t, before[i].Title, c.Title)
		assert.Equal(t, before[i].CategoryID, c.CategoryID)
	}
}

func TestSyncNeverClobbersHumanFields(t *testing.T) {
	svc, campaignRepo, _ := newSyncService()

	_, err := svc.Sync([]mailchimp.CampaignRecord{record("c1", "Original Title")})
	require.NoError(t, err)

	// Admin customizes the mirror.
	stored := campaignRepo.find("c1")
	stored.DisplayName = "Hand-picked name"
	stored.Hidden = true
	cat := 42
	stored.CategoryID = &cat

	// Remote content changes and the record comes around again.
	changed := record("c1", "Renamed Title")
	changed.Subject = "New subject"
	sent := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	changed.SentAt = &sent

	report, err := svc.Sync([]mailchimp.CampaignRecord{changed})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Classified)

	stored = campaignRepo.find("c1")
	assert.Equal(t, "Renamed Title", stored.Title)
	assert.Equal(t, "New subject", stored.Subject)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, "Hand-picked name", stored.DisplayName)
	assert.True(t, stored.Hidden)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, 42, *stored.CategoryID)
	assert.Equal(t, "original-title", stored.Slug, "slug derives from first import only")
}

func TestSyncFillIfEmptyUntilSet(t *testing.T) {
	svc, campaignRepo, categoryRepo := newSyncService()

	// No rules yet: campaign stays unclassified.
	_, err := svc.Sync([]mailchimp.CampaignRecord{record("c1", "Summer Sale")})
	require.NoError(t, err)
	assert.Nil(t, campaignRepo.find("c1").CategoryID)

	// A rule appears between runs; the still-empty category gets filled.
	categoryRepo.categories = []*model.Category{
		{ID: 3, Name: "Promotions", SmartMatch: true,
			Keywords: []model.Keyword{{Value: "sale", ScopeName: true}}},
	}
	report, err := svc.Sync([]mailchimp.CampaignRecord{record("c1", "Summer Sale")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Classified)
	require.NotNil(t, campaignRepo.find("c1").CategoryID)
	assert.Equal(t, 3, *campaignRepo.find("c1").CategoryID)

	// Rules change again; the set category is frozen.
	categoryRepo.categories = []*model.Category{
		{ID: 9, Name: "Other", SmartMatch: true,
			Keywords: []model.Keyword{{Value: "sale", ScopeName: true}}},
	}
	report, err = svc.Sync([]mailchimp.CampaignRecord{record("c1", "Summer Sale")})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Classified)
	assert.Equal(t, 3, *campaignRepo.find("c1").CategoryID)
}

func TestSyncSkipsRecordsMissingRequiredFields(t *testing.T) {
	svc, campaignRepo, _ := newSyncService()

	report, err := svc.Sync([]mailchimp.CampaignRecord{
		{Title: "No external id"},
		{ExternalID: "c2"}, // no title
		record("c3", "Fine"),
	})
	require.NoError(t, err, "per-record problems must not escape Sync")

	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Created)
	assert.Len(t, report.Errors, 2)
	assert.Nil(t, campaignRepo.find(""))
	assert.NotNil(t, campaignRepo.find("c3"))
}

func TestSyncDisambiguatesSlugCollisions(t *testing.T) {
	svc, campaignRepo, _ := newSyncService()

	report, err := svc.Sync([]mailchimp.CampaignRecord{
		record("c1", "Monthly Newsletter"),
		record("c2", "Monthly Newsletter"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)

	assert.Equal(t, "monthly-newsletter", campaignRepo.find("c1").Slug)
	assert.Equal(t, "monthly-newsletter-2", campaignRepo.find("c2").Slug)
}

func TestSyncDraftBecomingSent(t *testing.T) {
	svc, campaignRepo, _ := newSyncService()

	draft := record("c1", "T1")
	_, err := svc.Sync([]mailchimp.CampaignRecord{draft})
	require.NoError(t, err)
	assert.Nil(t, campaignRepo.find("c1").SentAt)

	sent := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	draft.SentAt = &sent
	report, err := svc.Sync([]mailchimp.CampaignRecord{draft})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Updated)
	stored := campaignRepo.find("c1")
	require.NotNil(t, stored.SentAt)
	assert.True(t, stored.SentAt.Equal(sent))
	assert.Empty(t, stored.DisplayName)
}
