package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "http://app.mydreamstechnology.in/vb/apikey.php"

type SMSService struct {
	apiKey     string
	senderID   string
	baseURL    string
	httpClient *http.Client
}

func NewSMSService(apiKey, senderID, baseURL string) *SMSService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &SMSService{
		apiKey:   apiKey,
		senderID: senderID,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendOrderPlaced tells the shopper their order was received and payment is
// pending.
func (s *SMSService) SendOrderPlaced(ctx context.Context, phone, orderNumber string) error {
	message := fmt.Sprintf("Your order %s has been placed. Complete the payment to confirm it.", orderNumber)
	return s.SendCustomMessage(ctx, phone, message)
}

func (s *SMSService) SendCustomMessage(ctx context.Context, phone, message string) error {
	params := url.Values{}
	params.Add("apikey", s.apiKey)
	params.Add("senderid", s.senderID)
	params.Add("number", phone)
	params.Add("message", message)

	fullURL := s.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	// The gateway answers 200 with a text body; anything else must say success.
	responseText := strings.ToLower(string(body))
	if !strings.Contains(responseText, "success") && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS sending failed: %s", string(body))
	}

	return nil
}
