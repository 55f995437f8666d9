package evidence_test

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestAgreementSigningFlow(t *testing.T) {
	f := setupServer(t)
	docID, token := createDocument(t, f, "agreement", "")

	signURL := f.baseURL + "/v1/sign/" + token

	// Resolve the link.
	var doc struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodGet, signURL, "", nil, &doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, docID, doc.ID)
	require.Equal(t, "agreement", doc.Kind)
	require.Equal(t, "pending", doc.Status)

	// Accept terms; a repeat is idempotent.
	var accepted struct {
		AlreadyAccepted bool `json:"already_accepted"`
		Document        struct {
			Status string `json:"status"`
		} `json:"document"`
	}
	resp = doJSON(t, http.MethodPost, signURL+"/accept", "", nil, &accepted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, accepted.AlreadyAccepted)
	require.Equal(t, "terms_accepted", accepted.Document.Status)

	resp = doJSON(t, http.MethodPost, signURL+"/accept", "", nil, &accepted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, accepted.AlreadyAccepted)

	// Request the passcode, captured at the fake gateway.
	resp = doJSON(t, http.MethodPost, signURL+"/otp", "", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	code := f.lastOTPCode()
	require.Len(t, code, 6)

	// A wrong code is rejected without advancing the workflow.
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	resp = doJSON(t, http.MethodPost, signURL+"/verify", "", map[string]string{"code": wrong}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The right code verifies.
	var verified struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodPost, signURL+"/verify", "", map[string]string{"code": code}, &verified)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "otp_verified", verified.Status)

	// Finalize: canonical hash comes back and the proof is anchored.
	var finalized struct {
		DocumentID string `json:"document_id"`
		Hash       string `json:"hash"`
	}
	resp = doJSON(t, http.MethodPost, signURL+"/finalize", "", nil, &finalized)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, docID, finalized.DocumentID)
	require.Regexp(t, hexHash, finalized.Hash)

	// The consumed token is done: the terminal state refuses further steps.
	resp = doJSON(t, http.MethodPost, signURL+"/accept", "", nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Back office sees the signed document with both proof halves.
	var detail struct {
		Document struct {
			Status       string `json:"status"`
			DocumentHash string `json:"document_hash"`
		} `json:"document"`
		Proof struct {
			Authority *struct {
				ProofToken string `json:"proofToken"`
			} `json:"authority"`
			Ledger *struct {
				ProofBlobEncoded string `json:"proofBlobEncoded"`
			} `json:"ledger"`
		} `json:"proof"`
	}
	resp = doJSON(t, http.MethodGet, f.baseURL+"/v1/documents/"+docID, staffToken(t), nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "signed", detail.Document.Status)
	require.Equal(t, finalized.Hash, detail.Document.DocumentHash)
	require.NotNil(t, detail.Proof.Authority)
	require.Equal(t, "e2e-authority-proof", detail.Proof.Authority.ProofToken)
	require.NotNil(t, detail.Proof.Ledger)
	require.NotEmpty(t, detail.Proof.Ledger.ProofBlobEncoded)
}

func TestAgreementCannotSkipSteps(t *testing.T) {
	f := setupServer(t)
	_, token := createDocument(t, f, "agreement", "")
	signURL := f.baseURL + "/v1/sign/" + token

	// Finalize straight from pending.
	resp := doJSON(t, http.MethodPost, signURL+"/finalize", "", nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Verify without a dispatched code.
	resp = doJSON(t, http.MethodPost, signURL+"/verify", "", map[string]string{"code": "123456"}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnknownTokenIsNotFound(t *testing.T) {
	f := setupServer(t)

	resp := doJSON(t, http.MethodGet, f.baseURL+"/v1/sign/not-a-real-token", "", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthorityOutageBlocksFinalize(t *testing.T) {
	f := setupServer(t)
	_, token := createDocument(t, f, "agreement", "")
	signURL := f.baseURL + "/v1/sign/" + token

	resp := doJSON(t, http.MethodPost, signURL+"/accept", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, signURL+"/otp", "", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, signURL+"/verify", "", map[string]string{"code": f.lastOTPCode()}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.mu.Lock()
	f.authorityDown = true
	f.mu.Unlock()

	resp = doJSON(t, http.MethodPost, signURL+"/finalize", "", nil, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// Recovery: the same call succeeds afterwards.
	f.mu.Lock()
	f.authorityDown = false
	f.mu.Unlock()

	var finalized struct {
		Hash string `json:"hash"`
	}
	resp = doJSON(t, http.MethodPost, signURL+"/finalize", "", nil, &finalized)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Regexp(t, hexHash, finalized.Hash)
}
