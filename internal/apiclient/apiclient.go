// Package apiclient is an HTTP client for the attendance backend API. The
// watch command uses it to load the roster snapshot and to mark students
// present as they are confirmed.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Client talks to the attendance backend under its /api/v1 prefix.
type Client struct {
	parsedURL *url.URL
	http      *http.Client
}

// NewClient creates a client for the backend at the given base URL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse api url %q: %w", baseURL, err)
	}

	return &Client{
		parsedURL: parsed,
		http:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// resolveURL joins the base URL with the API prefix and path segments. A
// query string in the last segment is split off and re-attached.
func (c *Client) resolveURL(pathSegments ...string) string {
	segments := append([]string{"api", "v1"}, pathSegments...)
	last := segments[len(segments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		segments[len(segments)-1] = pathPart
		result := c.parsedURL.JoinPath(segments...)
		result.RawQuery = query
		return result.String()
	}
	return c.parsedURL.JoinPath(segments...).String()
}

// doGetJSON performs a GET request and unmarshals the JSON response.
func doGetJSON[T any](ctx context.Context, c *Client, pathSegments ...string) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodGet, nil, pathSegments, http.StatusOK)
}

// doPostJSON performs a POST request with a JSON body and accepts either
// 200 OK or 201 Created, matching the backend's insert-vs-update replies.
func doPostJSON[T any](ctx context.Context, c *Client, requestBody any, pathSegments ...string) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodPost, requestBody, pathSegments, http.StatusOK, http.StatusCreated)
}

func doRequestJSON[T any](ctx context.Context, c *Client, method string, requestBody any, pathSegments []string, expectedStatuses ...int) (*T, error) {
	reqURL := c.resolveURL(pathSegments...)

	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if !slices.Contains(expectedStatuses, resp.StatusCode) {
		return nil, fmt.Errorf("request to %s failed with status %d: %s", reqURL, resp.StatusCode, readErrorBody(resp.Body))
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return "unable to read error body"
	}
	return string(data)
}
