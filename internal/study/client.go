package study

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QuotaMessage is the error text the service sends once the free tier is used up.
const QuotaMessage = "Chat limit reached. Upgrade to Pro for unlimited chats!"

// Common errors
var (
	ErrQuotaExceeded = errors.New("usage limit reached")
	ErrEmptyFeedback = errors.New("please enter feedback")
	ErrEmptyInput    = errors.New("please enter a question")
	ErrUnknownMode   = errors.New("unknown mode")
)

// ServerError is a non-2xx reply.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Server error: %d - %s", e.Status, e.Body)
}

// IsQuotaMessage reports whether a service error text means the quota is exhausted.
func IsQuotaMessage(msg string) bool {
	return msg == QuotaMessage || strings.Contains(strings.ToLower(msg), "limit reached")
}

// NotesResponse from /explain and /solve
type NotesResponse struct {
	Notes      string     `json:"notes"`
	Flashcards []string   `json:"flashcards"`
	Resources  []Resource `json:"resources"`
	Error      string     `json:"error"`
}

// SummaryResponse from /summarize-youtube
type SummaryResponse struct {
	Summary   string     `json:"summary"`
	VideoID   string     `json:"video_id"`
	Resources []Resource `json:"resources"`
	Error     string     `json:"error"`
}

// ChatResponse from /chat-youtube
type ChatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type explainRequest struct {
	UserID           string  `json:"user_id"`
	Topic            string  `json:"topic"`
	Exam             *string `json:"exam"`
	ExplanationStyle *string `json:"explanation_style"`
}

type solveRequest struct {
	UserID           string  `json:"user_id"`
	Problem          string  `json:"problem"`
	Exam             *string `json:"exam"`
	ExplanationStyle *string `json:"explanation_style"`
}

type feedbackRequest struct {
	UserID   string `json:"user_id"`
	Feedback string `json:"feedback"`
}

type summarizeRequest struct {
	UserID   string `json:"user_id"`
	VideoURL string `json:"videoUrl"`
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id"`
	Query   string `json:"query"`
}

// Client talks to the explanation service and the video summarizer.
// It performs exactly one HTTP request per call and never retries.
type Client struct {
	apiURL        string
	summarizerURL string
	httpClient    *http.Client
}

// NewClient creates a client. Trailing slashes on the base URLs are ignored.
func NewClient(apiURL, summarizerURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:        strings.TrimSuffix(apiURL, "/"),
		summarizerURL: strings.TrimSuffix(summarizerURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Explain posts a topic to /explain.
func (c *Client) Explain(ctx context.Context, userID, topic string) (*NotesResponse, error) {
	var out NotesResponse
	err := c.post(ctx, c.apiURL, "/explain", explainRequest{UserID: userID, Topic: topic}, &out)
	return &out, err
}

// Solve posts a problem to /solve. Exam and style are lower-cased and sent as
// null when empty.
func (c *Client) Solve(ctx context.Context, userID, problem, exam, style string) (*NotesResponse, error) {
	var out NotesResponse
	body := solveRequest{
		UserID:           userID,
		Problem:          problem,
		Exam:             lowerOrNil(exam),
		ExplanationStyle: lowerOrNil(style),
	}
	err := c.post(ctx, c.apiURL, "/solve", body, &out)
	return &out, err
}

// Feedback posts free text to /feedback. Any 2xx is success.
func (c *Client) Feedback(ctx context.Context, userID, text string) error {
	return c.post(ctx, c.apiURL, "/feedback", feedbackRequest{UserID: userID, Feedback: text}, nil)
}

// Summarize posts a video URL to /summarize-youtube.
func (c *Client) Summarize(ctx context.Context, userID, videoURL string) (*SummaryResponse, error) {
	var out SummaryResponse
	err := c.post(ctx, c.summarizerURL, "/summarize-youtube", summarizeRequest{UserID: userID, VideoURL: videoURL}, &out)
	return &out, err
}

// Chat asks a follow-up question about a summarized video.
func (c *Client) Chat(ctx context.Context, userID, videoID, query string) (*ChatResponse, error) {
	var out ChatResponse
	err := c.post(ctx, c.summarizerURL, "/chat-youtube", chatRequest{UserID: userID, VideoID: videoID, Query: query}, &out)
	return &out, err
}

// post sends body as JSON and decodes a 2xx reply into out (when non-nil).
// A non-2xx reply carrying the quota message returns ErrQuotaExceeded,
// any other non-2xx returns *ServerError.
func (c *Client) post(ctx context.Context, baseURL, path string, body, out any) error {
	return traceHTTP(ctx, http.MethodPost, path, func(ctx context.Context) (int, error) {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(jsonData))
		if err != nil {
			return 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			var errBody struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(respBody, &errBody) == nil && IsQuotaMessage(errBody.Error) {
				return resp.StatusCode, ErrQuotaExceeded
			}
			return resp.StatusCode, &ServerError{Status: resp.StatusCode, Body: string(respBody)}
		}

		if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
			return resp.StatusCode, nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
		return resp.StatusCode, nil
	})
}

func lowerOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lower := strings.ToLower(s)
	return &lower
}
