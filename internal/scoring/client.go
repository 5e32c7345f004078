// Package scoring fetches card ratings for bots from an external service.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/malexanderboyd/godr4ft/internal/game"
)

const (
	DefaultTimeout = 10 * time.Second
	// DefaultRate is the number of requests per second sent to the service.
	DefaultRate = 2
	maxBodySize = 4 << 20
)

type CardRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type Options struct {
	BaseURL    string
	Rate       rate.Limit
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	base       string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, game.Validation("scoring service url is empty")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, game.Validation("invalid scoring service url %q: %v", opts.BaseURL, err)
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(opts.Rate, 1),
		timeout:    opts.Timeout,
	}, nil
}

// Ratings returns the ratings of every card in sets keyed by card name. A
// failure for any set fails the whole call.
func (c *Client) Ratings(ctx context.Context, sets []string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := make(map[string]float64)
	for _, set := range sets {
		list, err := c.setRatings(ctx, set)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			out[r.Name] = r.Rating
		}
	}
	return out, nil
}

func (c *Client) setRatings(ctx context.Context, set string) ([]CardRating, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, game.External(err, "rating service rate limit")
	}

	endpoint := fmt.Sprintf("%s/ratings?%s", c.base, url.Values{"set": {set}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, game.External(err, "build rating request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, game.External(err, "fetch ratings for %s", set)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, game.External(nil, "rating service returned %d for %s", resp.StatusCode, set)
	}

	var list []CardRating
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&list); err != nil {
		return nil, game.External(err, "decode ratings for %s", set)
	}
	return list, nil
}
