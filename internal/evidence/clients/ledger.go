package clients

import "context"

// LedgerClient submits document hashes to the append-only ledger. Submission
// is idempotent on the ledger side (keyed by document id), so outbox retries
// after a lost response are safe.
type LedgerClient struct {
	httpClient
}

func NewLedgerClient(baseURL, apiKey string) *LedgerClient {
	return &LedgerClient{httpClient: newHTTPClient(baseURL, apiKey)}
}

type ledgerSubmitRequest struct {
	DocumentID string `json:"documentId"`
	Hash       string `json:"hash"`
}

type ledgerSubmitResponse struct {
	ProofBlobEncoded string `json:"proofBlobEncoded"`
}

func (c *LedgerClient) Submit(ctx context.Context, documentID, hash string) (string, error) {
	var resp ledgerSubmitResponse
	err := c.postJSON(ctx, "/v1/entries", ledgerSubmitRequest{
		DocumentID: documentID,
		Hash:       hash,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ProofBlobEncoded, nil
}
