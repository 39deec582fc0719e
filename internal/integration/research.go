// Package integration contains the narrow clients for external
// collaborators: the research API and the container runtime. Every call
// takes a context so callers can bound it with the configured execution
// timeout; failures surface as core.CollaboratorError for phase-local
// handling.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/primoscope/Spotify-echo-sub014/internal/core"
)

// ResearchRequest is the wire request for one research query.
type ResearchRequest struct {
	Query   string          `json:"query"`
	Options ResearchOptions `json:"options,omitempty"`
}

// ResearchOptions tunes a research query.
type ResearchOptions struct {
	MaxTokens int    `json:"maxTokens,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ResearchResponse is the wire response: an answer with citations.
type ResearchResponse struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Usage     struct {
		Tokens int `json:"tokens"`
	} `json:"usage"`
}

// ResearchClient issues queries against the research collaborator. Each
// query can fail independently; callers catch per-query.
type ResearchClient interface {
	Query(ctx context.Context, req ResearchRequest) (*ResearchResponse, error)
}

type httpResearchClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewResearchClient creates an HTTP ResearchClient against baseURL.
// The context passed to Query bounds each request; the client itself sets
// no additional timeout.
func NewResearchClient(baseURL, apiKey string) ResearchClient {
	return &httpResearchClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

func (c *httpResearchClient) Query(ctx context.Context, req ResearchRequest) (*ResearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &core.CollaboratorError{Collaborator: "research", Op: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &core.CollaboratorError{Collaborator: "research", Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &core.CollaboratorError{Collaborator: "research", Op: "query", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &core.CollaboratorError{
			Collaborator: "research",
			Op:           "query",
			Err:          fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet),
		}
	}

	var out ResearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &core.CollaboratorError{Collaborator: "research", Op: "decode response", Err: err}
	}
	return &out, nil
}
