// Package ledger is a read-only client for a Blockfrost-style transaction
// indexer.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chaincampus/warden/ports"
)

const defaultTimeout = 10 * time.Second

// IndexerClient queries the ledger indexer's HTTP API. The client timeout is
// a hard upper bound; per-request deadlines travel in the context.
type IndexerClient struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

// NewIndexerClient creates a new indexer client.
func NewIndexerClient(baseURL, projectID string) *IndexerClient {
	return &IndexerClient{
		baseURL:   baseURL,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// TransactionUTXOs fetches the input and output records of a transaction.
// An unknown hash surfaces as an error; callers decide whether that is
// fatal.
func (c *IndexerClient) TransactionUTXOs(ctx context.Context, txHash string) (ports.TxUTXOs, error) {
	url := fmt.Sprintf("%s/txs/%s/utxos", c.baseURL, txHash)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.TxUTXOs{}, fmt.Errorf("failed to create indexer request: %w", err)
	}
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.TxUTXOs{}, fmt.Errorf("indexer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.TxUTXOs{}, fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, body)
	}

	var utxos ports.TxUTXOs
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		return ports.TxUTXOs{}, fmt.Errorf("failed to decode indexer response: %w", err)
	}
	return utxos, nil
}
