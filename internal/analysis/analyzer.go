// Package analysis implements the quote document analyzer against an
// OpenAI-compatible chat completions endpoint. Its output is advisory
// only; pricing and scheduling never consult it.
package analysis

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

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
)

const (
	requestTimeout = 2 * time.Minute
	systemPrompt   = "You estimate document conversion work. Given source file names and a page count, " +
		"reply with JSON holding summary (one sentence), suggested_type (one of " +
		"\"Simple Conversion\", \"Creative Redesign\", \"Instructional Upgrade\") and rationale (one sentence)."
)

// Service calls a chat completions endpoint to annotate quote
// submissions. It implements quote.Analyzer.
type Service struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewService creates an analyzer client. The base URL is the API root,
// e.g. https://api.openai.com/v1.
func NewService(apiKey, baseURL, model string) *Service {
	return &Service{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Analyze asks the model for a summary and type suggestion.
func (s *Service) Analyze(ctx context.Context, fileNames []string, pageCount int) (*quote.Advisory, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, errors.New("analyzer api key is not configured")
	}

	userPrompt := fmt.Sprintf("Files: %s. Page count: %d.", strings.Join(fileNames, ", "), pageCount)
	payload := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode analysis payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", buf)
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("no analysis returned")
	}

	var result struct {
		Summary       string `json:"summary"`
		SuggestedType string `json:"suggested_type"`
		Rationale     string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("parse analysis content: %w", err)
	}

	advisory := &quote.Advisory{
		Summary:   strings.TrimSpace(result.Summary),
		Rationale: strings.TrimSpace(result.Rationale),
	}
	if t := project.Type(result.SuggestedType); t.Valid() {
		advisory.SuggestedType = t
	}
	return advisory, nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("analysis api error: status %d type %s message %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
	}
	return fmt.Errorf("analysis api error: status %d body %s", resp.StatusCode, string(body))
}
