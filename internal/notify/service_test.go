package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorityflow/internal/config"
	"priorityflow/internal/notify"
)

func twilioConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Twilio.AccountSID = "ACtest"
	cfg.Twilio.AuthToken = "secret"
	cfg.Twilio.From = "whatsapp:+14155238886"
	cfg.Twilio.To = "whatsapp:+5215512345678"
	cfg.Twilio.BaseURL = baseURL
	return cfg
}

func TestNewServiceReturnsNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	svc := notify.NewService(cfg)
	assert.NoError(t, svc.Send(context.Background(), "hola"))
}

func TestTwilioServicePostsMessage(t *testing.T) {
	var captured struct {
		path string
		auth string
		form url.Values
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.form, err = url.ParseQuery(string(body))
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := notify.NewService(twilioConfig(server.URL))
	require.NoError(t, svc.Send(context.Background(), "Plan del día (Top 5):\n#1 Reporte"))

	assert.Equal(t, "/2010-04-01/Accounts/ACtest/Messages.json", captured.path)
	assert.True(t, strings.HasPrefix(captured.auth, "Basic "))
	assert.Equal(t, "whatsapp:+14155238886", captured.form.Get("From"))
	assert.Equal(t, "whatsapp:+5215512345678", captured.form.Get("To"))
	assert.Contains(t, captured.form.Get("Body"), "Plan del día")
}

func TestTwilioServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := notify.NewService(twilioConfig(server.URL))
	err := svc.Send(context.Background(), "hola")
	assert.ErrorContains(t, err, "401")
}

func TestTwilioServiceSkipsEmptyBody(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := notify.NewService(twilioConfig(server.URL))
	require.NoError(t, svc.Send(context.Background(), "   "))
	assert.False(t, called)
}
