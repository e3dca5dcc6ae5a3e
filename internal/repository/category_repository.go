package repository

import (
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailmirror-backend/internal/errors"
	"github.com/unclebandit/mailmirror-backend/internal/model"
)

// CategoryRepositoryInterface defines the rule-configuration methods used by
// the sync service and the admin controllers.
type CategoryRepositoryInterface interface {
	ListWithKeywords() ([]*model.Category, error)
	GetByID(id int) (*model.Category, error)
	Create(c *model.Category) error
	Update(c *model.Category) error
	Delete(id int) error

	CreateKeyword(k *model.Keyword) error
	GetKeywordByID(id int) (*model.Keyword, error)
	UpdateKeyword(k *model.Keyword) error
	DeleteKeyword(id int) error
}

type CategoryRepository struct {
	DB *sql.DB
}

// ListWithKeywords returns every category ordered by rank (name breaks rank
// ties), each carrying its keywords ordered by rank (value breaks ties).
// This ordering IS the classification priority, so it must stay stable.
func (r *CategoryRepository) ListWithKeywords() ([]*model.Category, error) {
	rows, err := r.DB.Query(`SELECT id, name, rank, smart_match FROM categories ORDER BY rank, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*model.Category{}
	byID := map[int]*model.Category{}
	for rows.Next() {
		c := &model.Category{Keywords: []model.Keyword{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.Rank, &c.SmartMatch); err != nil {
			return nil, err
		}
		categories = append(categories, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	kwRows, err := r.DB.Query(`
        SELECT id, category_id, value, rank, scope_name, scope_subject, scope_content, scope_listname
        FROM keywords ORDER BY rank, value`)
	if err != nil {
		return nil, err
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var k model.Keyword
		if err := kwRows.Scan(&k.ID, &k.CategoryID, &k.Value, &k.Rank,
			&k.ScopeName, &k.ScopeSubject, &k.ScopeContent, &k.ScopeListName); err != nil {
			return nil, err
		}
		if c, ok := byID[k.CategoryID]; ok {
			c.Keywords = append(c.Keywords, k)
		}
	}
	return categories, kwRows.Err()
}

func (r *CategoryRepository) GetByID(id int) (*model.Category, error) {
	var c model.Category
	err := r.DB.QueryRow(`SELECT id, name, rank, smart_match FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Rank, &c.SmartMatch)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCategoryNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Create(c *model.Category) error {
	query := `INSERT INTO categories (name, rank, smart_match) VALUES ($1, $2, $3) RETURNING id`
	return r.DB.QueryRow(query, c.Name, c.Rank, c.SmartMatch).Scan(&c.ID)
}

func (r *CategoryRepository) Update(c *model.Category) error {
	query := `UPDATE categories SET name=$1, rank=$2, smart_match=$3 WHERE id=$4`
	res, err := r.DB.Exec(query, c.Name, c.Rank, c.SmartMatch, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCategoryNotFound(c.ID)
	}
	return nil
}

// Delete removes a category. The schema cascades to its keywords and clears
// campaigns.category_id (weak reference, campaigns themselves survive).
func (r *CategoryRepository) Delete(id int) error {
	res, err := r.DB.Exec(`DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCategoryNotFound(id)
	}
	return nil
}

// ====================== Keywords ======================

// CreateKeyword registers a new matching rule. Keyword values are unique
// across all categories, case-insensitively; violations come back as
// ErrDuplicateKeyword so the admin surface can report the operator mistake.
func (r *CategoryRepository) CreateKeyword(k *model.Keyword) error {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM keywords WHERE lower(value)=lower($1))`, k.Value).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return appErrors.NewDuplicateKeyword(k.Value)
	}

	query := `
        INSERT INTO keywords (category_id, value, rank, scope_name, scope_subject, scope_content, scope_listname)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	err = r.DB.QueryRow(query, k.CategoryID, k.Value, k.Rank,
		k.ScopeName, k.ScopeSubject, k.ScopeContent, k.ScopeListName).Scan(&k.ID)
	if err != nil {
		// Backstop: the unique index catches the race the pre-check misses.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.NewDuplicateKeyword(k.Value)
		}
		return err
	}
	return nil
}

func (r *CategoryRepository) GetKeywordByID(id int) (*model.Keyword, error) {
	var k model.Keyword
	err := r.DB.QueryRow(`
        SELECT id, category_id, value, rank, scope_name, scope_subject, scope_content, scope_listname
        FROM keywords WHERE id=$1`, id).
		Scan(&k.ID, &k.CategoryID, &k.Value, &k.Rank,
			&k.ScopeName, &k.ScopeSubject, &k.ScopeContent, &k.ScopeListName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &k, nil
}

func (r *CategoryRepository) UpdateKeyword(k *model.Keyword) error {
	query := `
        UPDATE keywords
        SET rank=$1, scope_name=$2, scope_subject=$3, scope_content=$4, scope_listname=$5
        WHERE id=$6
    `
	_, err := r.DB.Exec(query, k.Rank, k.ScopeName, k.ScopeSubject, k.ScopeContent, k.ScopeListName, k.ID)
	return err
}

func (r *CategoryRepository) DeleteKeyword(id int) error {
	_, err := r.DB.Exec(`DELETE FROM keywords WHERE id=$1`, id)
	return err
}

var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)
