package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the provider's REST API with basic auth. It implements
// Provider.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type orderPayload struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.Receipt,
		"notes":    in.Notes,
	})
	if err != nil {
		return Order{}, fmt.Errorf("marshal order: %w", err)
	}

	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, "/orders", bytes.NewReader(body), &payload); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return orderFromPayload(payload), nil
}

func (c *Client) FetchOrder(ctx context.Context, orderID string) (Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &payload); err != nil {
		return Order{}, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	return orderFromPayload(payload), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func orderFromPayload(p orderPayload) Order {
	notes := p.Notes
	if notes == nil {
		notes = map[string]string{}
	}
	return Order{ID: p.ID, Amount: p.Amount, Currency: p.Currency, Notes: notes}
}
