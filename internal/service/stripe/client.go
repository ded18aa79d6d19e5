package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

type Config struct {
	APIURL    string
	SecretKey string
}

type Client struct {
	client *http.Client
	config Config
}

func NewClient(cfg Config) *Client {
	return &Client{
		client: &http.Client{
			Transport: &AuthTransport{
				SecretKey: cfg.SecretKey,
				Base:      http.DefaultTransport,
			},
			Timeout: 10 * time.Second,
		},
		config: cfg,
	}
}

// AuthTransport adds Bearer auth headers
type AuthTransport struct {
	SecretKey string
	Base      http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.SecretKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")
	return t.Base.RoundTrip(req)
}

// IntentParams describes the payment intent to create. AmountCents is the
// charge in the smallest currency unit; User ends up in the intent metadata so
// settlements can be traced back to a ledger account.
type IntentParams struct {
	AmountCents int64
	Currency    string
	User        string
}

// CreateIntent asks the gateway for a new payment intent and returns it,
// client secret included.
func (c *Client) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	form.Set("currency", params.Currency)
	form.Set("payment_method_types[]", "card")
	form.Set("metadata[user]", params.User)

	endpoint := fmt.Sprintf("%s/v1/payment_intents", c.config.APIURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.doIntent(req)
}

// RetrieveIntent fetches the current state of an intent by its reference. The
// backend calls this on confirm instead of trusting the client's claim that
// the payment went through.
func (c *Client) RetrieveIntent(ctx context.Context, reference string) (*Intent, error) {
	endpoint := fmt.Sprintf("%s/v1/payment_intents/%s", c.config.APIURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return c.doIntent(req)
}

func (c *Client) doIntent(req *http.Request) (*Intent, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "br" {
		resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
			return nil, envelope.Error
		}
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}

	return &intent, nil
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
