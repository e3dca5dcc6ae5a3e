// internal/mailchimp/client.go
package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CampaignRecord is the flattened remote record the sync pipeline consumes.
// The pipeline itself never talks to the network; this package is the only
// place that knows MailChimp's wire format.
type CampaignRecord struct {
	ExternalID  string
	Title       string
	Subject     string
	SentAt      *time.Time // nil for drafts / not yet sent
	ListName    string
	ListID      string
	ContentHTML string
	ContentText string
}

// Fetcher is what the sync triggers depend on; *Client satisfies it.
type Fetcher interface {
	FetchCampaigns(ctx context.Context) ([]CampaignRecord, error)
}

// Subscriber is what the subscription widget depends on; *Client satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, listID, email, language string, doubleOptIn bool) error
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

const pageSize = 100

// NewClient builds a v3 API client. The datacenter is encoded in the key
// suffix ("xxxx-us6" -> us6.api.mailchimp.com).
func NewClient(apiKey string) (*Client, error) {
	idx := strings.LastIndex(apiKey, "-")
	if idx < 0 || idx == len(apiKey)-1 {
		return nil, fmt.Errorf("mailchimp: api key has no datacenter suffix")
	}
	dc := apiKey[idx+1:]
	return &Client{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type campaignsResponse struct {
	Campaigns  []campaignResponse `json:"campaigns"`
	TotalItems int                `json:"total_items"`
}

type campaignResponse struct {
	ID       string `json:"id"`
	SendTime string `json:"send_time"`
	Settings struct {
		SubjectLine string `json:"subject_line"`
		Title       string `json:"title"`
	} `json:"settings"`
	Recipients struct {
		ListID   string `json:"list_id"`
		ListName string `json:"list_name"`
	} `json:"recipients"`
}

type contentResponse struct {
	Html      string `json:"html"`
	PlainText string `json:"plain_text"`
}

// FetchCampaigns pages through GET /campaigns and pulls each campaign's
// content in a second request, mirroring what the fetch_campaigns job needs.
func (c *Client) FetchCampaigns(ctx context.Context) ([]CampaignRecord, error) {
	records := []CampaignRecord{}

	for offset := 0; ; offset += pageSize {
		var page campaignsResponse
		path := fmt.Sprintf("/campaigns?offset=%d&count=%d", offset, pageSize)
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}

		for _, raw := range page.Campaigns {
			rec := CampaignRecord{
				ExternalID: raw.ID,
				Title:      raw.Settings.Title,
				Subject:    raw.Settings.SubjectLine,
				ListID:     raw.Recipients.ListID,
				ListName:   raw.Recipients.ListName,
			}
			if raw.SendTime != "" {
				t, err := time.Parse(time.RFC3339, raw.SendTime)
				if err != nil {
					return nil, fmt.Errorf("mailchimp: campaign %s has bad send_time %q: %w", raw.ID, raw.SendTime, err)
				}
				rec.SentAt = &t
			}

			var content contentResponse
			if err := c.get(ctx, "/campaigns/"+raw.ID+"/content", &content); err != nil {
				return nil, err
			}
			rec.ContentHTML = content.Html
			rec.ContentText = content.PlainText

			records = append(records, rec)
		}

		if offset+pageSize >= page.TotalItems || len(page.Campaigns) == 0 {
			break
		}
	}

	return records, nil
}

type memberRequest struct {
	EmailAddress string `json:"email_address"`
	Status       string `json:"status"`
	Language     string `json:"language,omitempty"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Subscribe adds a member to a list via POST /lists/{id}/members. With
// double opt-in the member lands as "pending" and MailChimp sends the
// confirmation mail; otherwise they are subscribed outright. Language, when
// given, is stored on the member so sends can be localized.
func (c *Client) Subscribe(ctx context.Context, listID, email, language string, doubleOptIn bool) error {
	status := "subscribed"
	if doubleOptIn {
		status = "pending"
	}

	body, err := json.Marshal(memberRequest{
		EmailAddress: email,
		Status:       status,
		Language:     language,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/lists/"+listID+"/members", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth("anystring", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("mailchimp: subscribe to list %s failed: %s", listID, apiErr.Detail)
		}
		return fmt.Errorf("mailchimp: subscribe to list %s returned %d", listID, resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	// MailChimp accepts any username with the key as password.
	req.SetBasicAuth("anystring", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailchimp: GET %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
