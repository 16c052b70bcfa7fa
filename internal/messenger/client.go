package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/chatbot"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// Client talks to the Facebook Messenger Send API. The page access token is
// passed per call because every fanpage carries its own credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    graphAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBase points the client at a different API host, used by tests.
func NewClientWithBase(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type recipient struct {
	ID string `json:"id"`
}

type textMessage struct {
	Text string `json:"text"`
}

type sendMessageRequest struct {
	Recipient recipient    `json:"recipient"`
	Message   *textMessage `json:"message,omitempty"`
	// SenderAction is typing_on / typing_off when Message is absent.
	SenderAction string `json:"sender_action,omitempty"`
}

type sendMessageResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers a text message to a customer and returns the platform
// message id.
func (c *Client) SendText(ctx context.Context, accessToken, recipientID, text string) (*chatbot.SendResult, error) {
	payload := sendMessageRequest{
		Recipient: recipient{ID: recipientID},
		Message:   &textMessage{Text: text},
	}
	resp, err := c.post(ctx, accessToken, payload)
	if err != nil {
		return nil, err
	}
	return &chatbot.SendResult{MessageID: resp.MessageID}, nil
}

// SendTyping toggles the typing indicator for a customer.
func (c *Client) SendTyping(ctx context.Context, accessToken, recipientID string, on bool) error {
	action := "typing_on"
	if !on {
		action = "typing_off"
	}
	payload := sendMessageRequest{
		Recipient:    recipient{ID: recipientID},
		SenderAction: action,
	}
	_, err := c.post(ctx, accessToken, payload)
	return err
}

func (c *Client) post(ctx context.Context, accessToken string, payload sendMessageRequest) (*sendMessageResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("send API: unexpected response: %s", string(respBody))
	}

	if resp.StatusCode >= 400 || parsed.Error != nil {
		if parsed.Error != nil {
			return nil, fmt.Errorf("send API error %d: %s", parsed.Error.Code, parsed.Error.Message)
		}
		return nil, fmt.Errorf("send API error: %s - %s", resp.Status, string(respBody))
	}

	return &parsed, nil
}
