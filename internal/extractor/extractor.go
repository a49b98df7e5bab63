// Package extractor talks to the face descriptor extraction service. The
// service owns camera capture, face detection and descriptor computation;
// this client only pulls the descriptors for the latest frame.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Client is an HTTP client for the extractor service.
type Client struct {
	parsedURL *url.URL
	http      *http.Client
}

// NewClient creates a client for the extractor service at the given base URL.
func NewClient(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse extractor url %q: %w", baseURL, err)
	}

	return &Client{
		parsedURL: parsed,
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type frameResponse struct {
	Descriptors [][]float32 `json:"descriptors"`
}

// NextDescriptors fetches the face descriptors detected in the extractor's
// current frame. A frame with no faces yields an empty slice, not an error.
func (c *Client) NextDescriptors(ctx context.Context) ([][]float32, error) {
	frameURL := c.parsedURL.JoinPath("frame", "descriptors").String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, frameURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, string(body))
	}

	var frame frameResponse
	if err := json.NewDecoder(resp.Body).Decode(&frame); err != nil {
		return nil, fmt.Errorf("could not decode extractor response: %w", err)
	}

	descriptors := make([][]float32, 0, len(frame.Descriptors))
	for _, d := range frame.Descriptors {
		if len(d) != constants.DescriptorDim {
			return nil, fmt.Errorf("extractor returned descriptor of length %d, expected %d", len(d), constants.DescriptorDim)
		}
		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}
