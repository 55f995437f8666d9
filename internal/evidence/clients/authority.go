package clients

import (
	"context"
	"time"

	"github.com/probatio/probatio/internal/evidence/service"
)

// AuthorityClient talks to the trusted timestamp authority. One endpoint:
// submit a hash, get back a signed stamp binding the hash to a time.
type AuthorityClient struct {
	httpClient
}

func NewAuthorityClient(baseURL, apiKey string) *AuthorityClient {
	return &AuthorityClient{httpClient: newHTTPClient(baseURL, apiKey)}
}

type stampRequest struct {
	Hash string `json:"hash"`
}

type stampResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	ProofToken string    `json:"proofToken"`
}

func (c *AuthorityClient) Stamp(ctx context.Context, hash string) (service.AuthorityStamp, error) {
	var resp stampResponse
	if err := c.postJSON(ctx, "/v1/stamps", stampRequest{Hash: hash}, &resp); err != nil {
		return service.AuthorityStamp{}, err
	}
	return service.AuthorityStamp{
		Timestamp:  resp.Timestamp,
		ProofToken: resp.ProofToken,
		URL:        c.baseURL,
	}, nil
}
