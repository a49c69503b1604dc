// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package omdb implements the HTTP client for the OMDb catalog API.
//
// The client distinguishes two failure modes that callers must treat
// differently: a clean "no match" answer from the provider (NotFoundError,
// carrying the provider's message) and the provider being unreachable or
// misbehaving (ErrUnavailable). A circuit breaker guards the latter so a
// dead provider fails fast instead of tying up request workers.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/solmarita/filmopine/internal/config"
	"github.com/solmarita/filmopine/internal/logging"
)

// maxErrorBodySize caps how much of an error response body is read for
// error reporting.
const maxErrorBodySize = 64 * 1024

// ErrUnavailable is returned when the provider cannot be reached or
// answers with a server error after retries. Handlers map it to 502.
var ErrUnavailable = errors.New("catalog provider unavailable")

// NotFoundError is returned when the provider answered normally but
// found no match for the query. Message is the provider's own wording,
// e.g. "Movie not found!" or "Too many results.".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// SearchItem is one result entry from a title search.
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// SearchResult is one page of search results.
type SearchResult struct {
	Items        []SearchItem
	TotalResults int
}

// searchResponse is the raw OMDb wire format. Response is the string
// "True" or "False"; on "False" the Error field carries the reason.
type searchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

// Client is an OMDb API client with retry and circuit breaker protection.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	breaker        *gobreaker.CircuitBreaker[*SearchResult]
}

// New creates a client from configuration.
func New(cfg *config.OMDbConfig) *Client {
	settings := gobreaker.Settings{
		Name:    "omdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A clean "no match" answer is a healthy provider, not a failure.
		IsSuccessful: func(err error) bool {
			var notFound *NotFoundError
			return err == nil || errors.As(err, &notFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryDelay,
		breaker:        gobreaker.NewCircuitBreaker[*SearchResult](settings),
	}
}

// Search queries the provider for titles matching query. Page is
// 1-based; OMDb returns up to 10 items per page.
//
// Returns *NotFoundError when the provider found no match, and an error
// wrapping ErrUnavailable when the provider is unreachable, answers with
// a server error, or the circuit breaker is open.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	result, err := c.breaker.Execute(func() (*SearchResult, error) {
		return c.search(ctx, query, page)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) search(ctx context.Context, query string, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("s", query)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	resp, err := c.doRequestWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var raw searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	if raw.Response != "True" {
		msg := raw.Error
		if msg == "" {
			msg = "Movie not found!"
		}
		return nil, &NotFoundError{Message: msg}
	}

	total, _ := strconv.Atoi(raw.TotalResults)
	return &SearchResult{Items: raw.Search, TotalResults: total}, nil
}

// doRequestWithRetry performs the GET with bounded exponential backoff on
// network errors, HTTP 429, and 5xx responses. Backoff waits are
// cancellable via ctx.
func (c *Client) doRequestWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
		} else {
			return resp, nil
		}

		if attempt == c.maxRetries {
			break
		}

		// 500ms, 1s, 2s, ... capped by maxRetries.
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	}

	return nil, lastErr
}

// readBodyForError reads at most maxErrorBodySize bytes for error
// reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte(fmt.Sprintf("<failed to read body: %v>", err))
	}
	return body
}
