// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/mailmirror-backend/internal/errors"
	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
	"github.com/unclebandit/mailmirror-backend/internal/service"
)

type CampaignController struct {
	CampaignRepo repository.CampaignRepositoryInterface
	SyncService  *service.SyncService
	Fetcher      mailchimp.Fetcher
}

// TriggerSync is the admin "fetch now" action: fetch everything from
// MailChimp, reconcile, and hand the report back to the caller.
func (c *CampaignController) TriggerSync(w http.ResponseWriter, r *http.Request) {
	records, err := c.Fetcher.FetchCampaigns(r.Context())
	if err != nil {
		log.Println("⚠️ Failed to fetch campaigns:", err)
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusBadGateway)
		return
	}

	report, err := c.SyncService.Sync(records)
	if err != nil {
		http.Error(w, "sync failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var hidden *bool
	if v := r.URL.Query().Get("hidden"); v != "" {
		h, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid hidden filter", http.StatusBadRequest)
			return
		}
		hidden = &h
	}
	var categoryID *int
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid category_id filter", http.StatusBadRequest)
			return
		}
		categoryID = &id
	}

	offset := (page - 1) * pageSize
	campaigns, total, err := c.CampaignRepo.List(offset, pageSize, hidden, categoryID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// UpdateCampaign edits the admin-owned fields only. Remote-sourced fields
// are not editable: the next sync would overwrite them anyway.
func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	var body struct {
		DisplayName   *string `json:"display_name"`
		Hidden        *bool   `json:"hidden"`
		CategoryID    *int    `json:"category_id"`
		ClearCategory bool    `json:"clear_category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err = c.CampaignRepo.UpdateEditable(id, body.DisplayName, body.Hidden, body.CategoryID, body.ClearCategory)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}
