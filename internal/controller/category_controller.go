// internal/controller/category_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/mailmirror-backend/internal/errors"
	"github.com/unclebandit/mailmirror-backend/internal/model"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
)

type CategoryController struct {
	CategoryRepo repository.CategoryRepositoryInterface
}

func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.CategoryRepo.ListWithKeywords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Rank       int    `json:"rank"`
		SmartMatch *bool  `json:"smart_match"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	// Categories participate in smart matching unless opted out.
	smartMatch := true
	if body.SmartMatch != nil {
		smartMatch = *body.SmartMatch
	}

	category := &model.Category{Name: body.Name, Rank: body.Rank, SmartMatch: smartMatch}
	if err := c.CategoryRepo.Create(category); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := c.CategoryRepo.GetByID(id)
	if err != nil {
		var notFound *appErrors.ErrCategoryNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var body struct {
		Name       *string `json:"name"`
		Rank       *int    `json:"rank"`
		SmartMatch *bool   `json:"smart_match"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name != nil {
		category.Name = *body.Name
	}
	if body.Rank != nil {
		category.Rank = *body.Rank
	}
	if body.SmartMatch != nil {
		category.SmartMatch = *body.SmartMatch
	}

	if err := c.CategoryRepo.Update(category); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(category)
}

func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	if err := c.CategoryRepo.Delete(id); err != nil {
		var notFound *appErrors.ErrCategoryNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateKeyword registers a matching rule under a category. Duplicate values
// (anywhere, any casing) come back as 409: an operator mistake, not a sync
// problem.
func (c *CategoryController) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	if _, err := c.CategoryRepo.GetByID(categoryID); err != nil {
		var notFound *appErrors.ErrCategoryNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var body struct {
		Value         string `json:"value"`
		Rank          int    `json:"rank"`
		ScopeName     *bool  `json:"scope_name"`
		ScopeSubject  *bool  `json:"scope_subject"`
		ScopeContent  *bool  `json:"scope_content"`
		ScopeListName *bool  `json:"scope_listname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Value) == "" {
		http.Error(w, "value is required", http.StatusBadRequest)
		return
	}

	// Default scopes: campaign name and list name, like the admin UI.
	keyword := &model.Keyword{
		CategoryID:    categoryID,
		Value:         body.Value,
		Rank:          body.Rank,
		ScopeName:     true,
		ScopeListName: true,
	}
	if body.ScopeName != nil {
		keyword.ScopeName = *body.ScopeName
	}
	if body.ScopeSubject != nil {
		keyword.ScopeSubject = *body.ScopeSubject
	}
	if body.ScopeContent != nil {
		keyword.ScopeContent = *body.ScopeContent
	}
	if body.ScopeListName != nil {
		keyword.ScopeListName = *body.ScopeListName
	}
	if !hasScope(keyword) {
		http.Error(w, "keyword must enable at least one scope", http.StatusBadRequest)
		return
	}

	if err := c.CategoryRepo.CreateKeyword(keyword); err != nil {
		var dup *appErrors.ErrDuplicateKeyword
		if errors.As(err, &dup) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(keyword)
}

func (c *CategoryController) UpdateKeyword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid keyword id", http.StatusBadRequest)
		return
	}

	keyword, err := c.CategoryRepo.GetKeywordByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if keyword == nil {
		http.Error(w, "keyword not found", http.StatusNotFound)
		return
	}

	var body struct {
		Rank          *int  `json:"rank"`
		ScopeName     *bool `json:"scope_name"`
		ScopeSubject  *bool `json:"scope_subject"`
		ScopeContent  *bool `json:"scope_content"`
		ScopeListName *bool `json:"scope_listname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Rank != nil {
		keyword.Rank = *body.Rank
	}
	if body.ScopeName != nil {
		keyword.ScopeName = *body.ScopeName
	}
	if body.ScopeSubject != nil {
		keyword.ScopeSubject = *body.ScopeSubject
	}
	if body.ScopeContent != nil {
		keyword.ScopeContent = *body.ScopeContent
	}
	if body.ScopeListName != nil {
		keyword.ScopeListName = *body.ScopeListName
	}
	if !hasScope(keyword) {
		http.Error(w, "keyword must enable at least one scope", http.StatusBadRequest)
		return
	}

	if err := c.CategoryRepo.UpdateKeyword(keyword); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keyword)
}

// hasScope reports whether the keyword can match anything at all. A keyword
// with every scope disabled would sit in the rule set dead forever, so both
// create and update refuse it.
func hasScope(k *model.Keyword) bool {
	return k.ScopeName || k.ScopeSubject || k.ScopeContent || k.ScopeListName
}

func (c *CategoryController) DeleteKeyword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid keyword id", http.StatusBadRequest)
		return
	}
	if err := c.CategoryRepo.DeleteKeyword(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
