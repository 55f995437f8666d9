package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/pkg/httpx"
)

// RebuttalHandler serves the public rebuttal surface.
type RebuttalHandler struct {
	TokenService    *service.TokenService
	RebuttalService *service.RebuttalService
}

// HandleResolve godoc
//
//	@Summary		Resolve Rebuttal Link Endpoint
//	@Description	Resolve an access token to its rebuttal document; every call is recorded as link_opened
//	@Tags			Rebuttal
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/rebuttal/{token} [get].
func (h *RebuttalHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	doc, err := h.TokenService.Resolve(r.Context(), r.PathValue("token"), requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// IdentityRequest carries the tax id the employee submits as proof.
type IdentityRequest struct {
	TaxID string `json:"tax_id"`
}

// HandleIdentity godoc
//
//	@Summary		Validate Identity Endpoint
//	@Description	Match the submitted tax id against the addressed employee; mismatches are audited
//	@Tags			Rebuttal
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Param			request	body		IdentityRequest		true	"Submitted tax id"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		403		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/rebuttal/{token}/identity [post].
func (h *RebuttalHandler) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	var req IdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaxID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "tax_id is required")
		return
	}

	doc, err := h.RebuttalService.ValidateIdentity(r.Context(), r.PathValue("token"), req.TaxID, requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// DraftRequest carries work-in-progress rebuttal text.
type DraftRequest struct {
	Text string `json:"text"`
}

// HandleDraft godoc
//
//	@Summary		Save Draft Endpoint
//	@Description	Store work-in-progress rebuttal text; repeatable, replaces the previous draft
//	@Tags			Rebuttal
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Param			request	body		DraftRequest		true	"Draft text"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/rebuttal/{token}/draft [put].
func (h *RebuttalHandler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	doc, err := h.RebuttalService.SaveDraft(r.Context(), r.PathValue("token"), req.Text, requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// DecisionRequest carries the employee's choice.
type DecisionRequest struct {
	Decision string `json:"decision"`
}

// HandleDecision godoc
//
//	@Summary		Record Decision Endpoint
//	@Description	Fix the employee's decision: exercise the rebuttal right or decline it
//	@Tags			Rebuttal
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Param			request	body		DecisionRequest		true	"exercised or declined"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/rebuttal/{token}/decision [post].
func (h *RebuttalHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Decision == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "decision is required")
		return
	}

	doc, err := h.RebuttalService.RecordDecision(r.Context(), r.PathValue("token"),
		domain.Decision(req.Decision), requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// ConfirmRequest carries the sworn statement the employee signs off with.
type ConfirmRequest struct {
	AffidavitText string `json:"affidavit_text"`
}

// ConfirmResponse is the confirmed outcome: decision plus the canonical hash
// the timestamp proof is anchored to.
type ConfirmResponse struct {
	DocumentID  string    `json:"document_id"`
	Hash        string    `json:"hash"`
	Decision    string    `json:"decision"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// HandleConfirm godoc
//
//	@Summary		Confirm Rebuttal Endpoint
//	@Description	Terminal rebuttal transition: hashes the sworn statement, anchors the canonical hash and consumes the access token
//	@Tags			Rebuttal
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Param			request	body		ConfirmRequest		true	"Sworn affidavit text"
//	@Success		200		{object}	ConfirmResponse		"document_id, hash, decision, confirmed_at"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/rebuttal/{token}/confirm [post].
func (h *RebuttalHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AffidavitText == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "affidavit_text is required")
		return
	}

	result, err := h.RebuttalService.Confirm(r.Context(), r.PathValue("token"), req.AffidavitText, requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ConfirmResponse{
		DocumentID:  result.DocumentID,
		Hash:        result.Hash,
		Decision:    string(result.Decision),
		ConfirmedAt: result.ConfirmedAt,
	})
}
