package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
)

// Client talks to the PayPal Orders v2 REST API. It implements the checkout
// payment capability: create an order, then capture it.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	httpc    *http.Client
	logger   *log.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(baseURL, clientID, secret string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue string `json:"issue"`
	} `json:"details"`
}

// CreateOrder registers a CAPTURE-intent order for the given amount and
// returns the provider order token.
func (c *Client) CreateOrder(ctx context.Context, total decimal.Decimal, currency string) (string, error) {
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{
			{Amount: amount{CurrencyCode: currency, Value: total.StringFixed(2)}},
		},
	}
	var resp orderResponse
	if err := c.post(ctx, "/v2/checkout/orders", body, &resp); err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("paypal create order: empty order id")
	}
	c.logger.Printf("paypal: created order %s amount=%s %s", resp.ID, total.StringFixed(2), currency)
	return resp.ID, nil
}

// Capture settles an approved order. Capturing an order the buyer never
// approved maps to domain.ErrPaymentCancelled.
func (c *Client) Capture(ctx context.Context, orderToken string) (domain.PaymentCapture, error) {
	var resp captureResponse
	err := c.post(ctx, "/v2/checkout/orders/"+url.PathEscape(orderToken)+"/capture", nil, &resp)
	if err != nil {
		return domain.PaymentCapture{}, fmt.Errorf("paypal capture: %w", err)
	}

	capture := domain.PaymentCapture{CaptureID: resp.ID, Status: resp.Status}
	for _, pu := range resp.PurchaseUnits {
		for _, cap := range pu.Payments.Captures {
			capture.CaptureID = cap.ID
			if cap.Status != "" {
				capture.Status = cap.Status
			}
		}
	}
	c.logger.Printf("paypal: captured order %s capture=%s status=%s", orderToken, capture.CaptureID, capture.Status)
	return capture, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil {
			for _, d := range apiErr.Details {
				if d.Issue == "ORDER_NOT_APPROVED" {
					return domain.ErrPaymentCancelled
				}
			}
			if apiErr.Name != "" {
				return fmt.Errorf("status %d: %s: %s", resp.StatusCode, apiErr.Name, apiErr.Message)
			}
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// token returns a cached client-credentials token, refreshing it a minute
// before expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("oauth token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("oauth token: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("oauth token: decode: %w", err)
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
