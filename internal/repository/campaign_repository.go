package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailmirror-backend/internal/errors"
	"github.com/unclebandit/mailmirror-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Sync pipeline
	GetByExternalID(externalID string) (*model.Campaign, error)
	SlugExists(slug string) (bool, error)
	CreateFromRemote(c *model.Campaign) error
	UpdateFromRemote(c *model.Campaign, categoryID *int) (categoryFilled bool, err error)

	// Admin
	GetByID(id int) (*model.Campaign, error)
	List(offset, limit int, hidden *bool, categoryID *int) ([]*model.Campaign, int, error)
	UpdateEditable(id int, displayName *string, hidden *bool, categoryID *int, clearCategory bool) error

	// Widget reads
	GetBySlug(slug string) (*model.Campaign, error)
	Published(limit int, categoryIDs []int) ([]model.Campaign, error)
	BySelection(ids []int) ([]model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, external_id, title, subject, display_name, list_name, list_id,
        sent_at, content_text, content_html, slug, hidden, category_id, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	var displayName, listName, listID, contentText, contentHTML sql.NullString
	err := row.Scan(
		&c.ID, &c.ExternalID, &c.Title, &c.Subject, &displayName, &listName, &listID,
		&c.SentAt, &contentText, &contentHTML, &c.Slug, &c.Hidden, &c.CategoryID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.DisplayName = displayName.String
	c.ListName = listName.String
	c.ListID = listID.String
	c.ContentText = contentText.String
	c.ContentHTML = contentHTML.String
	return &c, nil
}

// ====================== Sync pipeline ======================

// GetByExternalID looks a campaign up by its MailChimp id. Returns (nil, nil)
// when no local mirror exists yet.
func (r *CampaignRepository) GetByExternalID(externalID string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE external_id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, externalID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM campaigns WHERE slug=$1)`, slug).Scan(&exists)
	return exists, err
}

// CreateFromRemote inserts a brand-new mirror row. The caller has already
// derived a collision-free slug and (optionally) classified the campaign.
func (r *CampaignRepository) CreateFromRemote(c *model.Campaign) error {
	query := `
        INSERT INTO campaigns
            (external_id, title, subject, list_name, list_id, sent_at,
             content_text, content_html, slug, hidden, category_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query,
		c.ExternalID, c.Title, c.Subject, c.ListName, c.ListID, c.SentAt,
		c.ContentText, c.ContentHTML, c.Slug, c.CategoryID,
	).Scan(&c.ID, &c.CreatedAt)
}

// UpdateFromRemote overwrites only the remote-sourced columns of an existing
// mirror. display_name, hidden and slug are never part of the SET list, and
// category_id goes through COALESCE so a category already set by an admin (or
// an earlier sync) wins over the freshly classified one. That makes the whole
// update-plus-fill a single atomic statement. Returns whether the category
// column was actually filled by this call.
func (r *CampaignRepository) UpdateFromRemote(c *model.Campaign, categoryID *int) (bool, error) {
	query := `
        UPDATE campaigns
        SET title=$1, subject=$2, list_name=$3, list_id=$4, sent_at=$5,
            content_text=$6, content_html=$7,
            category_id=COALESCE(category_id, $8),
            updated_at=NOW()
        WHERE external_id=$9
        RETURNING category_id
    `
	var got sql.NullInt64
	err := r.DB.QueryRow(query,
		c.Title, c.Subject, c.ListName, c.ListID, c.SentAt,
		c.ContentText, c.ContentHTML, categoryID, c.ExternalID,
	).Scan(&got)
	if err != nil {
		return false, err
	}
	filled := categoryID != nil && got.Valid && int(got.Int64) == *categoryID
	return filled, nil
}

// ====================== Admin ======================

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(offset, limit int, hidden *bool, categoryID *int) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if hidden != nil {
		query += fmt.Sprintf(" AND hidden=$%d", argPos)
		args = append(args, *hidden)
		argPos++
	}
	if categoryID != nil {
		query += fmt.Sprintf(" AND category_id=$%d", argPos)
		args = append(args, *categoryID)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY sent_at DESC NULLS LAST, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if hidden != nil {
		countQuery += fmt.Sprintf(" AND hidden=$%d", argPosCount)
		argsCount = append(argsCount, *hidden)
		argPosCount++
	}
	if categoryID != nil {
		countQuery += fmt.Sprintf(" AND category_id=$%d", argPosCount)
		argsCount = append(argsCount, *categoryID)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// UpdateEditable changes only the admin-owned columns. Nil pointers mean
// "leave alone"; clearCategory distinguishes "unset the category" from
// "don't touch it".
func (r *CampaignRepository) UpdateEditable(id int, displayName *string, hidden *bool, categoryID *int, clearCategory bool) error {
	query := `UPDATE campaigns SET updated_at=NOW()`
	args := []interface{}{}
	argPos := 1

	if displayName != nil {
		query += fmt.Sprintf(", display_name=$%d", argPos)
		args = append(args, *displayName)
		argPos++
	}
	if hidden != nil {
		query += fmt.Sprintf(", hidden=$%d", argPos)
		args = append(args, *hidden)
		argPos++
	}
	if clearCategory {
		query += ", category_id=NULL"
	} else if categoryID != nil {
		query += fmt.Sprintf(", category_id=$%d", argPos)
		args = append(args, *categoryID)
		argPos++
	}

	query += fmt.Sprintf(" WHERE id=$%d", argPos)
	args = append(args, id)

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

// ====================== Widget reads ======================

func (r *CampaignRepository) GetBySlug(slug string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE slug=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Published returns sent, non-hidden campaigns newest first, optionally
// restricted to a category set and capped at limit (0 = no cap). This is the
// exact archive-widget definition: sent_at IS NOT NULL AND hidden=false.
func (r *CampaignRepository) Published(limit int, categoryIDs []int) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE sent_at IS NOT NULL AND hidden=false`
	args := []interface{}{}
	argPos := 1

	if len(categoryIDs) > 0 {
		query += fmt.Sprintf(" AND category_id = ANY($%d)", argPos)
		args = append(args, pq.Array(categoryIDs))
		argPos++
	}

	query += " ORDER BY sent_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, limit)
	}

	return r.queryCampaigns(query, args...)
}

// BySelection returns the explicitly picked campaigns, newest first. An
// explicit selection is its own visibility decision, so the hidden flag is
// not consulted here (only the published archive filters on it).
func (r *CampaignRepository) BySelection(ids []int) ([]model.Campaign, error) {
	if len(ids) == 0 {
		return []model.Campaign{}, nil
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns
        WHERE id = ANY($1)
        ORDER BY sent_at DESC NULLS LAST, id DESC`
	return r.queryCampaigns(query, pq.Array(ids))
}

func (r *CampaignRepository) queryCampaigns(query string, args ...interface{}) ([]model.Campaign, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
