// internal/clients/mail_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MailClient sends transactional email through the mail gateway. The
// attachment is base64-encoded by the JSON encoder.
type MailClient struct {
	baseURL string
	apiKey  string
}

func NewMailClient(baseURL, apiKey string) *MailClient {
	return &MailClient{baseURL: baseURL, apiKey: apiKey}
}

type mailRequest struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Attachment     []byte `json:"attachment,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

func (c *MailClient) Send(ctx context.Context, to, subject, textBody string, attachment []byte, attachmentName string) error {
	body, err := json.Marshal(mailRequest{
		To:             to,
		Subject:        subject,
		Body:           textBody,
		Attachment:     attachment,
		AttachmentName: attachmentName,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/messages", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
