// Package notify delivers digest messages over WhatsApp via the Twilio REST
// API. When credentials are not configured a noop implementation is returned
// so callers never branch on delivery availability.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"priorityflow/internal/config"
)

const (
	userAgent      = "PriorityFlow/0.1.0"
	defaultTimeout = 10 * time.Second
)

// Service sends one plain-text message to the configured user.
type Service interface {
	Send(ctx context.Context, body string) error
}

// NewService builds a WhatsApp notifier from the Twilio settings. With an
// incomplete configuration a noop service is returned.
func NewService(cfg *config.Config) Service {
	tw := cfg.Twilio
	if tw.AccountSID == "" || tw.AuthToken == "" || tw.From == "" || tw.To == "" {
		return noopService{}
	}

	timeout := time.Duration(tw.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &twilioService{
		baseURL:    strings.TrimRight(tw.BaseURL, "/"),
		accountSID: tw.AccountSID,
		authToken:  tw.AuthToken,
		from:       tw.From,
		to:         tw.To,
		client:     &http.Client{Timeout: timeout},
	}
}

type twilioService struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	client     *http.Client
}

func (t *twilioService) Send(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", t.to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio responded with status %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) Send(context.Context, string) error { return nil }
