package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Message is one contact-form submission. All five fields are required by
// the relay endpoint before a send is attempted.
type Message struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Body      string `json:"message"`
}

// Client delivers contact messages to the site inbox.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Config carries the delivery credentials; the API key is injected here, not
// read from the environment inside Send.
type Config struct {
	APIKey    string
	BaseURL   string
	ToEmail   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SendGridClient posts messages through the SendGrid v3 mail-send API.
type SendGridClient struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) (*SendGridClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mailer: API key is required")
	}
	if strings.TrimSpace(cfg.ToEmail) == "" {
		return nil, errors.New("mailer: destination address is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = "no-reply@vcniti.com"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Vcniti Contact Form"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SendGridClient{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

// NewFromEnv reads SENDGRID_API_KEY and CONTACT_TO_EMAIL once at
// construction time.
func NewFromEnv() (*SendGridClient, error) {
	return New(Config{
		APIKey:    strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		ToEmail:   strings.TrimSpace(os.Getenv("CONTACT_TO_EMAIL")),
		FromEmail: strings.TrimSpace(os.Getenv("CONTACT_FROM_EMAIL")),
	})
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	ReplyTo          sgAddress           `json:"reply_to"`
	Content          []sgContent         `json:"content"`
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	body := fmt.Sprintf("From: %s %s <%s>\n\n%s", msg.FirstName, msg.LastName, msg.Email, msg.Body)
	payload := sgPayload{
		Personalizations: []sgPersonalization{{
			To:      []sgAddress{{Email: c.cfg.ToEmail}},
			Subject: fmt.Sprintf("[Contact] %s", msg.Subject),
		}},
		From:    sgAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		ReplyTo: sgAddress{Email: msg.Email, Name: strings.TrimSpace(msg.FirstName + " " + msg.LastName)},
		Content: []sgContent{{Type: "text/plain", Value: body}},
	}

	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailer: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("mailer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer: delivery failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
