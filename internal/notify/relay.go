package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type Mail struct {
	To      string
	Subject string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// RelayClient posts mail to an HTTP relay that accepts {from, to, subject, text}.
type RelayClient struct {
	client *resty.Client
	from   string
}

func NewRelayClient(baseURL, apiKey, from string) *RelayClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RelayClient{client: client, from: from}
}

func (c *RelayClient) Send(ctx context.Context, mail Mail) error {
	if strings.TrimSpace(mail.To) == "" {
		return errors.New("mail recipient is required")
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"from":    c.from,
			"to":      mail.To,
			"subject": mail.Subject,
			"text":    mail.Text,
		}).
		Post("/send")
	if err != nil {
		return fmt.Errorf("mail relay request: %w", err)
	}
	body := resp.String()
	if resp.IsError() {
		message := gjson.Get(body, "error.message").String()
		if message == "" {
			message = gjson.Get(body, "error").String()
		}
		if message == "" {
			message = resp.Status()
		}
		return fmt.Errorf("mail relay rejected %s: %s", mail.To, message)
	}
	if result := gjson.Get(body, "accepted"); result.Exists() && !result.Bool() {
		return fmt.Errorf("mail relay did not accept %s", mail.To)
	}
	return nil
}
