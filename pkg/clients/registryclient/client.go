package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/errors"
)

const sheetsPath = "/api/sheets"

// Client talks to a running registry server and satisfies db.GiftStore
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the registry at baseURL.
// A nil httpClient uses http.DefaultClient; no timeout is imposed beyond ctx.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListGifts fetches GET /api/sheets
func (c *Client) ListGifts(ctx context.Context) ([]model.Gift, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sheetsPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to reach registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var gifts []model.Gift
	if err := json.NewDecoder(resp.Body).Decode(&gifts); err != nil {
		return nil, errors.StoreUnavailable(err, "malformed registry response")
	}
	if gifts == nil {
		gifts = []model.Gift{}
	}

	return gifts, nil
}

// UpdateGift sends PATCH /api/sheets?id=<id> with {"data": fields}
func (c *Client) UpdateGift(ctx context.Context, id string, fields map[string]string) error {
	if id == "" {
		return errors.Validation("gift id is required")
	}

	body, err := json.Marshal(map[string]any{"data": fields})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode update")
	}

	endpoint := fmt.Sprintf("%s%s?id=%s", c.baseURL, sheetsPath, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.StoreUnavailable(err, "failed to reach registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil || !ack.Success {
		return errors.StoreUnavailable(err, "registry did not acknowledge update")
	}

	return nil
}

// decodeError rebuilds the server's coded error from a non-200 response.
// Bodies without a code fall back to the status class.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.Unmarshal(data, &body)

	message := body.Error
	if message == "" {
		message = fmt.Sprintf("registry returned %s", resp.Status)
	}

	code := errors.Code(body.Code)
	if code == "" {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			code = errors.CodeNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			code = errors.CodeRateLimited
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			code = errors.CodeValidation
		default:
			code = errors.CodeStoreUnavailable
		}
	}

	return errors.New(code, message)
}
