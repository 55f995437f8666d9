package evidence_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRebuttalFlow(t *testing.T) {
	f := setupServer(t)
	docID, token := createDocument(t, f, "rebuttal", "12345678Z")

	rebutURL := f.baseURL + "/v1/rebuttal/" + token

	// Resolve.
	var doc struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodGet, rebutURL, "", nil, &doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, docID, doc.ID)
	require.Equal(t, "pending", doc.Status)

	// Wrong tax id is forbidden and does not advance the state.
	resp = doJSON(t, http.MethodPost, rebutURL+"/identity", "", map[string]string{"tax_id": "00000000A"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Right tax id validates identity.
	var validated struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodPost, rebutURL+"/identity", "", map[string]string{"tax_id": "12345678Z"}, &validated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "identity_validated", validated.Status)

	// Save a draft.
	var drafted struct {
		DraftText string `json:"draft_text"`
	}
	resp = doJSON(t, http.MethodPut, rebutURL+"/draft", "", map[string]string{"text": "borrador"}, &drafted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "borrador", drafted.DraftText)

	// Record the decision.
	var decided struct {
		Status   string `json:"status"`
		Decision string `json:"decision"`
	}
	resp = doJSON(t, http.MethodPost, rebutURL+"/decision", "", map[string]string{"decision": "exercised"}, &decided)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "decision_recorded", decided.Status)
	require.Equal(t, "exercised", decided.Decision)

	// Confirm without the sworn statement is refused.
	resp = doJSON(t, http.MethodPost, rebutURL+"/confirm", "", nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Confirm with the statement: hash plus decision come back.
	var confirmed struct {
		DocumentID string `json:"document_id"`
		Hash       string `json:"hash"`
		Decision   string `json:"decision"`
	}
	resp = doJSON(t, http.MethodPost, rebutURL+"/confirm", "",
		map[string]string{"affidavit_text": "declaro bajo juramento que lo expuesto es cierto"}, &confirmed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, docID, confirmed.DocumentID)
	require.Regexp(t, hexHash, confirmed.Hash)
	require.Equal(t, "exercised", confirmed.Decision)

	// Confirm replay returns the recorded result.
	var replay struct {
		Hash string `json:"hash"`
	}
	resp = doJSON(t, http.MethodPost, rebutURL+"/confirm", "",
		map[string]string{"affidavit_text": "declaro bajo juramento que lo expuesto es cierto"}, &replay)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, confirmed.Hash, replay.Hash)

	// Audit trail records the whole journey in order.
	var events []struct {
		Action string `json:"action"`
	}
	resp = doJSON(t, http.MethodGet, f.baseURL+"/v1/documents/"+docID+"/audit", staffToken(t), nil, &events)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	require.Subset(t, actions, []string{
		"token_issued",
		"link_opened",
		"identity_mismatch",
		"identity_validated",
		"draft_saved",
		"decision_recorded",
		"confirmed",
		"anchor_requested",
		"ledger_anchored",
	})
}

func TestRebuttalDecisionRequiresIdentity(t *testing.T) {
	f := setupServer(t)
	_, token := createDocument(t, f, "rebuttal", "12345678Z")

	resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/rebuttal/"+token+"/decision", "",
		map[string]string{"decision": "exercised"}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRebuttalInvalidDecision(t *testing.T) {
	f := setupServer(t)
	_, token := createDocument(t, f, "rebuttal", "12345678Z")
	rebutURL := f.baseURL + "/v1/rebuttal/" + token

	resp := doJSON(t, http.MethodPost, rebutURL+"/identity", "", map[string]string{"tax_id": "12345678Z"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, rebutURL+"/decision", "", map[string]string{"decision": "maybe"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
