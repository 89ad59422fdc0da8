package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

//go:generate moq --out mocks/http_client.go --pkg mocks --skip-ensure --with-resets . HTTPClient

// HTTPClient is an interface for http client, satisfied by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RubertConfig contains parameters for RubertScorer.
type RubertConfig struct {
	API       string // inference endpoint base url
	Model     string // model identifier, i.e. "NeuroSpaceX/ruSpamNS_v1"
	MaxLength int    // token budget passed to the model server, default 128
}

// RubertScorer scores messages with a pretrained sequence-classification
// model served over http. The server owns tokenization, truncation and
// padding, the scorer only passes the text and the token budget along.
type RubertScorer struct {
	client HTTPClient
	params RubertConfig
}

// NewRubertScorer makes a scorer for the given inference endpoint.
func NewRubertScorer(client HTTPClient, params RubertConfig) *RubertScorer {
	if params.MaxLength == 0 {
		params.MaxLength = 128
	}
	return &RubertScorer{client: client, params: params}
}

// Score sends the text to the inference endpoint and returns spam probability.
func (s *RubertScorer) Score(ctx context.Context, text string) (float64, error) {
	reqData := struct {
		Model     string `json:"model"`
		Text      string `json:"text"`
		MaxLength int    `json:"max_length"`
	}{Model: s.params.Model, Text: text, MaxLength: s.params.MaxLength}

	body, err := json.Marshal(&reqData)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal score request: %w", err)
	}

	reqURL := s.params.API + "/score"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to make request %s: %w", reqURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s from %s", resp.Status, reqURL)
	}

	respData := struct {
		Score float64 `json:"score"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return 0, fmt.Errorf("failed to parse response from %s: %w", reqURL, err)
	}

	if respData.Score < 0 || respData.Score > 1 {
		return 0, fmt.Errorf("score %v from %s out of range", respData.Score, reqURL)
	}
	return respData.Score, nil
}

// String returns the scorer description for logging.
func (s *RubertScorer) String() string {
	return fmt.Sprintf("rubert scorer {model: %s, api: %s, max-length: %d}", s.params.Model, s.params.API, s.params.MaxLength)
}
