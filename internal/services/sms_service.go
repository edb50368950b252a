package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SMSSender delivers a one-time login code to a phone number. Issue flows treat
// a returned error as a transport failure and persist nothing.
type SMSSender interface {
	SendOtp(ctx context.Context, phone, code string) error
}

// gatewaySMSSender posts to an HTTP SMS gateway.
type gatewaySMSSender struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

func NewGatewaySMSSender(gatewayURL, apiKey string) SMSSender {
	return &gatewaySMSSender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *gatewaySMSSender) SendOtp(ctx context.Context, phone, code string) error {
	payload, err := json.Marshal(map[string]string{
		"phone":    phone,
		"template": "otp",
		"code":     code,
		"ttl":      "5",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// logSMSSender logs codes instead of sending them. Used when no gateway is
// configured, e.g. local development.
type logSMSSender struct{}

func NewLogSMSSender() SMSSender {
	return &logSMSSender{}
}

func (s *logSMSSender) SendOtp(ctx context.Context, phone, code string) error {
	log.Printf("[sms simulated] phone: %s, code: %s", phone, code)
	return nil
}
