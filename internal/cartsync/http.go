package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPRemote talks to the storefront cart endpoints under /api/cart.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cart api: %d %s", e.Status, e.Message)
}

func (r *HTTPRemote) Fetch(ctx context.Context, token string) ([]Item, error) {
	var items []Item
	if err := r.do(ctx, http.MethodGet, "/api/cart", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *HTTPRemote) SetQuantity(ctx context.Context, token string, productID int64, quantity int) error {
	body := map[string]any{"productId": productID, "quantity": quantity}
	return r.do(ctx, http.MethodPost, "/api/cart", token, body, nil)
}

func (r *HTTPRemote) Remove(ctx context.Context, token string, productID int64) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", productID), token, nil, nil)
}

func (r *HTTPRemote) Clear(ctx context.Context, token string) error {
	return r.do(ctx, http.MethodDelete, "/api/cart", token, nil, nil)
}

func (r *HTTPRemote) Sync(ctx context.Context, token string, items []Item) ([]Item, error) {
	type syncItem struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	}
	payload := struct {
		Items []syncItem `json:"items"`
	}{Items: make([]syncItem, 0, len(items))}
	for _, it := range items {
		payload.Items = append(payload.Items, syncItem{ID: it.ID, Quantity: it.Quantity})
	}

	var merged []Item
	if err := r.do(ctx, http.MethodPost, "/api/cart/sync", token, payload, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *HTTPRemote) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &StatusError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
