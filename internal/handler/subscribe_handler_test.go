package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	err error

	gotListID      string
	gotEmail       string
	gotLanguage    string
	gotDoubleOptIn bool
	calls          int
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, listID, email, language string, doubleOptIn bool) error {
	f.calls++
	f.gotListID = listID
	f.gotEmail = email
	f.gotLanguage = language
	f.gotDoubleOptIn = doubleOptIn
	return f.err
}

func postSubscribe(h *SubscribeHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.SubscribeHandler(rec, httptest.NewRequest("POST", "/subscribe", strings.NewReader(body)))
	return rec
}

func TestSubscribeHandler(t *testing.T) {
	sub := &fakeSubscriber{}
	h := NewSubscribeHandler(sub)

	rec := postSubscribe(h, `{"list_id":"l1","email":"visitor@example.com","language":"de"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "l1", sub.gotListID)
	assert.Equal(t, "visitor@example.com", sub.gotEmail)
	assert.Equal(t, "de", sub.gotLanguage)
	assert.True(t, sub.gotDoubleOptIn, "double opt-in is the default")
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestSubscribeHandlerSingleOptIn(t *testing.T) {
	sub := &fakeSubscriber{}
	h := NewSubscribeHandler(sub)

	rec := postSubscribe(h, `{"list_id":"l1","email":"visitor@example.com","double_optin":false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sub.gotDoubleOptIn)
	assert.Contains(t, rec.Body.String(), `"status":"subscribed"`)
}

func TestSubscribeHandlerValidation(t *testing.T) {
	sub := &fakeSubscriber{}
	h := NewSubscribeHandler(sub)

	for name, body := range map[string]string{
		"missing list":  `{"email":"visitor@example.com"}`,
		"missing email": `{"list_id":"l1"}`,
		"bad email":     `{"list_id":"l1","email":"not-an-address"}`,
		"bad json":      `{`,
	} {
		rec := postSubscribe(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Zero(t, sub.calls, "invalid requests must not reach MailChimp")
}

func TestSubscribeHandlerUpstreamFailure(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("member exists")}
	h := NewSubscribeHandler(sub)

	rec := postSubscribe(h, `{"list_id":"l1","email":"visitor@example.com"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
