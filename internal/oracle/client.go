package oracle

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

// ErrNoDocument is returned when a model reply contains no JSON object to
// hand to the normalizer.
var ErrNoDocument = errors.New("no structured document in model reply")

// AssessmentRequest asks the model gateway to assess one piece of content.
type AssessmentRequest struct {
	SubjectID string `json:"subject_id"`
	Domain    string `json:"domain"`
	Modality  string `json:"modality"`
	Content   string `json:"content"`
}

// Client produces raw assessment documents from the generative model gateway.
// The returned value is unvalidated; callers run it through the normalizer.
type Client interface {
	GenerateAssessment(ctx context.Context, req AssessmentRequest) (map[string]any, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// GenerateAssessment posts the content to the gateway and extracts the
// structured document from its (possibly chatty) reply.
func (c *HTTPClient) GenerateAssessment(ctx context.Context, req AssessmentRequest) (map[string]any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/assessments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("oracle POST /v1/assessments: %d %s", resp.StatusCode, string(reply))
	}

	return ExtractDocument(string(reply))
}

// ExtractDocument locates the outermost {...} substring in a model reply and
// parses it. Models wrap their structured output in commentary often enough
// that parsing the whole reply directly is a losing strategy.
func ExtractDocument(text string) (map[string]any, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					var doc map[string]any
					if err := json.Unmarshal([]byte(text[start:i+1]), &doc); err != nil {
						return nil, fmt.Errorf("parse document: %w", err)
					}
					return doc, nil
				}
			}
		}
	}
	return nil, ErrNoDocument
}
