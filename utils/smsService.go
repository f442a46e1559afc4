package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// SMSClient sends text messages through the provider's HTTP API.
type SMSClient struct {
	client   *resty.Client
	apiKey   string
	senderID string
}

func NewSMSClient(apiURL, apiKey, senderID string) *SMSClient {
	return &SMSClient{
		client:   resty.New().SetBaseURL(apiURL).SetTimeout(10 * time.Second),
		apiKey:   apiKey,
		senderID: senderID,
	}
}

func (s *SMSClient) Send(mobile, message string) error {
	resp, err := s.client.R().
		SetQueryParams(map[string]string{
			"authorization": s.apiKey,
			"sender_id":     s.senderID,
			"message":       message,
			"numbers":       mobile,
		}).
		Get("")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("sms provider responded with status %d", resp.StatusCode())
	}
	return nil
}
