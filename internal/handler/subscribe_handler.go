// internal/handler/subscribe_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
)

// SubscribeHandler backs the subscription widget: it signs a visitor up to a
// MailChimp list. Which list is the widget's business (each placement carries
// its own list_id); double opt-in is on unless the widget turns it off, and
// the page language rides along so sends can be localized.
type SubscribeHandler struct {
	Subscriber mailchimp.Subscriber
}

func NewSubscribeHandler(subscriber mailchimp.Subscriber) *SubscribeHandler {
	return &SubscribeHandler{Subscriber: subscriber}
}

func (h *SubscribeHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListID      string `json:"list_id"`
		Email       string `json:"email"`
		Language    string `json:"language"`
		DoubleOptIn *bool  `json:"double_optin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(body.ListID) == "" {
		http.Error(w, "list_id is required", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}

	doubleOptIn := true
	if body.DoubleOptIn != nil {
		doubleOptIn = *body.DoubleOptIn
	}

	if err := h.Subscriber.Subscribe(r.Context(), body.ListID, email, body.Language, doubleOptIn); err != nil {
		log.Println("⚠️ Subscribe failed:", err)
		http.Error(w, "subscription failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	status := "subscribed"
	if doubleOptIn {
		status = "pending"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"list_id": body.ListID,
	})
}
