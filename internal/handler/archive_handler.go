// internal/handler/archive_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailmirror-backend/internal/repository"
)

// ArchiveHandler serves the read-only queries the site widgets render from:
// the published archive (optionally filtered by categories and capped), a
// single campaign by slug, and an explicit hand-picked selection.
type ArchiveHandler struct {
	Repo repository.CampaignRepositoryInterface
}

// NewArchiveHandler creates a new ArchiveHandler with the given repository
func NewArchiveHandler(repo repository.CampaignRepositoryInterface) *ArchiveHandler {
	return &ArchiveHandler{Repo: repo}
}

// ListPublishedHandler returns sent, non-hidden campaigns newest first.
// ?categories=1,2 filters by category set, ?count=N caps the result.
func (h *ArchiveHandler) ListPublishedHandler(w http.ResponseWriter, r *http.Request) {
	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}

	categoryIDs, err := parseIDList(r.URL.Query().Get("categories"))
	if err != nil {
		http.Error(w, "invalid categories", http.StatusBadRequest)
		return
	}

	campaigns, err := h.Repo.Published(count, categoryIDs)
	if err != nil {
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

// GetBySlugHandler returns one published campaign. Drafts and hidden
// campaigns are 404 here even though they exist for the admin.
func (h *ArchiveHandler) GetBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	campaign, err := h.Repo.GetBySlug(slug)
	if err != nil {
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if campaign == nil || !campaign.Published() {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// SelectedHandler returns the campaigns named in ?ids=, newest first.
func (h *ArchiveHandler) SelectedHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil || len(ids) == 0 {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return
	}

	campaigns, err := h.Repo.BySelection(ids)
	if err != nil {
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

func parseIDList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
