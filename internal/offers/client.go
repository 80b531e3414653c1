// Package offers implements the client for the external offers microservice.
package offers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/product-catalogue-service/internal/model"
	"golang.org/x/time/rate"
)

// The partner service expects the token in a literal "Bearer" header rather
// than the usual Authorization form.
const bearerHeader = "Bearer"

// Client performs outbound calls against the offers microservice. Every
// method issues exactly one network call; there is no caching and no retry.
type Client struct {
	baseURL      string
	refreshToken string
	hc           *http.Client
	limiter      *rate.Limiter
}

// NewClient builds a Client for the given base URL. rps bounds the outbound
// call rate across all methods; the partner's limits are undocumented, so
// the cap is configurable.
func NewClient(baseURL, refreshToken string, timeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		refreshToken: refreshToken,
		hc:           &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Authenticate exchanges the pre-configured refresh secret for a fresh
// access token. The partner answers 201 with the token on success.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &AuthError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set(bearerHeader, c.refreshToken)
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer drainClose(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", &AuthError{Status: resp.StatusCode}
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Err: err}
	}
	return body.AccessToken, nil
}

// FetchOffers looks up the current offer for one product, authenticating
// with the supplied access token. 200 yields the parsed offer; any other
// status is a FetchError, not an exceptional condition.
func (c *Client) FetchOffers(ctx context.Context, productID, token string) (model.Offer, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Offer{}, &FetchError{ProductID: productID, Err: err}
	}
	url := c.baseURL + "/products/" + productID + "/offers"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Offer{}, &FetchError{ProductID: productID, Err: err}
	}
	req.Header.Set(bearerHeader, token)
	resp, err := c.hc.Do(req)
	if err != nil {
		return model.Offer{}, &FetchError{ProductID: productID, Err: err}
	}
	defer drainClose(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return model.Offer{}, &FetchError{ProductID: productID, Status: resp.StatusCode}
	}
	var offer model.Offer
	if err := json.NewDecoder(resp.Body).Decode(&offer); err != nil {
		return model.Offer{}, &FetchError{ProductID: productID, Status: resp.StatusCode, Err: err}
	}
	return offer, nil
}

// RegisterProduct announces a newly created product to the partner service.
// 201 means registered; anything else is a RegisterError and the caller is
// responsible for rolling back its local record.
func (c *Client) RegisterProduct(ctx context.Context, p model.Product, token string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RegisterError{ProductID: p.ID, Err: err}
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return &RegisterError{ProductID: p.ID, Err: err}
	}
	url := c.baseURL + "/products/register"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &RegisterError{ProductID: p.ID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(bearerHeader, token)
	resp, err := c.hc.Do(req)
	if err != nil {
		return &RegisterError{ProductID: p.ID, Err: err}
	}
	defer drainClose(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return &RegisterError{ProductID: p.ID, Status: resp.StatusCode}
	}
	return nil
}

// drainClose discards any unread body so the connection can be reused.
func drainClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
