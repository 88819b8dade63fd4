package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPWriter is the transactional writer: it POSTs a JSON array of SQL
// statements to the store's /v1/transactions endpoint.
type HTTPWriter struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPWriter builds a writer against the given store API base URL.
func NewHTTPWriter(baseURL string) *HTTPWriter {
	return &HTTPWriter{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type transactionResponse struct {
	Results []struct {
		RowsAffected int64      `json:"rows_affected"`
		Columns      []string   `json:"columns"`
		Rows         [][]string `json:"rows"`
	} `json:"results"`
}

// Exec implements Writer. Non-2xx responses and connection failures are
// reported as a single wrapped transport error; the daemon never retries.
func (w *HTTPWriter) Exec(ctx context.Context, statements ...string) ([]Result, error) {
	body, err := json.Marshal(statements)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.BaseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transaction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transaction request returned status %d", resp.StatusCode)
	}

	var parsed transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transaction response: %w", err)
	}

	results := make([]Result, len(parsed.Results))
	for i, r := range parsed.Results {
		results[i] = Result{RowsAffected: r.RowsAffected, Columns: r.Columns, Rows: r.Rows}
	}
	return results, nil
}

// Healthy reports whether GET {base}/health returned HTTP 200.
func (w *HTTPWriter) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
