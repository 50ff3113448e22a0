// Package video generates recipes from short-form cooking videos by way of
// an external transcript API and the model boundary.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TranscriptClient fetches transcripts from the external transcript API,
// keyed by video identifier and platform.
type TranscriptClient struct {
	baseEndpoint string
	httpClient   doer
}

func NewTranscriptClient(baseEndpoint string, httpClient doer) *TranscriptClient {
	return &TranscriptClient{
		baseEndpoint: baseEndpoint,
		httpClient:   httpClient,
	}
}

func (c *TranscriptClient) Fetch(ctx context.Context, videoID, platform string) (string, error) {
	u := fmt.Sprintf("%s/transcript?video_id=%s&platform=%s",
		c.baseEndpoint, url.QueryEscape(videoID), url.QueryEscape(platform))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch transcript: %s", resp.Status)
	}

	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode transcript response: %w", err)
	}
	if strings.TrimSpace(body.Transcript) == "" {
		return "", fmt.Errorf("transcript is empty")
	}
	return body.Transcript, nil
}

// VideoID extracts the video identifier from a shared URL. Handles the
// common watch?v= query form and falls back to the last path segment.
func VideoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("parse video URL: %w", err)
	}
	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "", fmt.Errorf("no video ID in URL %q", videoURL)
	}
	return last, nil
}
