package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// Client talks to the mobile-money aggregator's JSON API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type initiateReq struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Channel   string `json:"channel"`
	Phone     string `json:"phone"`
}

type statusResp struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Initiate asks the provider to prompt the payer on their handset.
func (c *Client) Initiate(ctx context.Context, ref string, amount domain.Money, provider, phone string) error {
	body, err := json.Marshal(initiateReq{
		Reference: ref,
		Amount:    amount.Cents,
		Currency:  amount.Currency,
		Channel:   provider,
		Phone:     phone,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("provider initiate: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Status performs one status round trip for ref.
func (c *Client) Status(ctx context.Context, ref string) (usecase.ProviderStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+ref+"/status", nil)
	if err != nil {
		return usecase.ProviderPending, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return usecase.ProviderPending, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return usecase.ProviderPending, fmt.Errorf("provider status: unexpected status %d", resp.StatusCode)
	}

	var out statusResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return usecase.ProviderPending, fmt.Errorf("decode provider status: %w", err)
	}
	return Classify(out.Status), nil
}

// Classify buckets the provider's status strings into the three classes the
// core understands. Unknown strings stay pending rather than failing a
// payment on a vocabulary change.
func Classify(s string) usecase.ProviderStatus {
	switch strings.ToUpper(s) {
	case "COMPLETED", "SUCCESS", "SETTLED":
		return usecase.ProviderCompleted
	case "FAILED", "CANCELLED", "REJECTED", "EXPIRED":
		return usecase.ProviderFailed
	default:
		return usecase.ProviderPending
	}
}

var _ usecase.PaymentProvider = (*Client)(nil)
