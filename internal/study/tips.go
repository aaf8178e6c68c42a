package study

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NoTipsPlaceholder is shown when the tips request fails or returns nothing.
const NoTipsPlaceholder = "No exam tips generated."

// SampleTips is what StaticTips returns.
const SampleTips = "Sample exam tips: 1. Focus on key concepts. 2. Practice steps. 3. Memorize formulas."

// TipsProvider produces exam tips for a set of notes.
type TipsProvider interface {
	Tips(ctx context.Context, userID, prompt string, maxTokens int) (string, error)
}

// TipsPrompt builds the exam-tips prompt for notes produced in mode.
func TipsPrompt(mode Mode, notes string) string {
	kind := "explanation"
	if mode == ModeSolve {
		kind = "solution"
	}
	return fmt.Sprintf("Given this %s: %s, provide 3-5 key points to remember for an exam.", kind, notes)
}

// StaticTips returns SampleTips after Delay. Used when no tips endpoint is configured.
type StaticTips struct {
	Delay time.Duration
}

// NewStaticTips uses a 500ms delay.
func NewStaticTips() *StaticTips {
	return &StaticTips{Delay: 500 * time.Millisecond}
}

func (s *StaticTips) Tips(ctx context.Context, _, _ string, _ int) (string, error) {
	if s.Delay <= 0 {
		return SampleTips, nil
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return SampleTips, nil
	}
}

// RemoteTips asks a completion endpoint for tips.
type RemoteTips struct {
	URL        string
	HTTPClient *http.Client
}

// NewRemoteTips posts to url.
func NewRemoteTips(url string, timeout time.Duration) *RemoteTips {
	return &RemoteTips{URL: url, HTTPClient: &http.Client{Timeout: timeout}}
}

type tipsRequest struct {
	UserID    string `json:"user_id"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type tipsResponse struct {
	Tips  string `json:"tips"`
	Error string `json:"error"`
}

func (r *RemoteTips) Tips(ctx context.Context, userID, prompt string, maxTokens int) (string, error) {
	var out tipsResponse
	err := traceHTTP(ctx, http.MethodPost, "tips", func(ctx context.Context) (int, error) {
		jsonData, err := json.Marshal(tipsRequest{UserID: userID, Prompt: prompt, MaxTokens: maxTokens})
		if err != nil {
			return 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(jsonData))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.HTTPClient.Do(req)
		if err != nil {
			return 0, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, &ServerError{Status: resp.StatusCode, Body: string(body)}
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
		return resp.StatusCode, nil
	})
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Tips, nil
}
