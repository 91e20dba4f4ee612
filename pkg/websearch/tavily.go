// Package websearch is the web fallback for queries the internal document
// store cannot answer. It wraps the Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyAPIURL = "https://api.tavily.com/search"

// TavilyResult is one raw search hit.
type TavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []TavilyResult `json:"results"`
}

// TavilyClient calls the Tavily search API.
type TavilyClient struct {
	apiKey     string
	maxResults int
	httpClient *http.Client
}

func NewTavilyClient(apiKey string, maxResults int) *TavilyClient {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &TavilyClient{
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Search runs one query. A missing API key yields an empty result set rather
// than an error, so deployments without web search degrade gracefully.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]TavilyResult, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	reqBody := tavilyRequest{
		APIKey:            c.apiKey,
		Query:             query,
		SearchDepth:       "advanced",
		IncludeAnswer:     false,
		IncludeRawContent: false,
		MaxResults:        c.maxResults,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body %s", resp.StatusCode, string(bodyBytes))
	}

	var tavilyResp tavilyResponse
	if err := json.Unmarshal(bodyBytes, &tavilyResp); err != nil {
		return nil, err
	}
	return tavilyResp.Results, nil
}
