package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/pkg/httpx"
)

// SignHandler serves the public agreement-signing surface. Callers hold only
// the opaque path token; there is no other authentication.
type SignHandler struct {
	TokenService     *service.TokenService
	AgreementService *service.AgreementService
}

// HandleResolve godoc
//
//	@Summary		Resolve Signing Link Endpoint
//	@Description	Resolve an access token to its agreement document; every call is recorded as link_opened
//	@Tags			Signing
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/sign/{token} [get].
func (h *SignHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	doc, err := h.TokenService.Resolve(r.Context(), r.PathValue("token"), requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// AcceptTermsResponse reports whether this call or an earlier one accepted.
type AcceptTermsResponse struct {
	Document        DocumentResponse `json:"document"`
	AlreadyAccepted bool             `json:"already_accepted"`
}

// HandleAccept godoc
//
//	@Summary		Accept Terms Endpoint
//	@Description	Record acceptance of the agreement terms; idempotent on repeat
//	@Tags			Signing
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Success		200		{object}	AcceptTermsResponse	"document, already_accepted"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/sign/{token}/accept [post].
func (h *SignHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	doc, already, err := h.AgreementService.AcceptTerms(r.Context(), r.PathValue("token"), requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, AcceptTermsResponse{
		Document:        toDocumentResponse(doc),
		AlreadyAccepted: already,
	})
}

// HandleRequestOTP godoc
//
//	@Summary		Request Passcode Endpoint
//	@Description	Dispatch a one-time passcode to the signer's registered address; supersedes any earlier code
//	@Tags			Signing
//	@Produce		json
//	@Param			token	path	string	true	"Access token"
//	@Success		204		"passcode dispatched"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/sign/{token}/otp [post].
func (h *SignHandler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if err := h.AgreementService.RequestOTP(r.Context(), r.PathValue("token"), requestActor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// VerifyOTPRequest carries the submitted 6-digit code.
type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify Passcode Endpoint
//	@Description	Redeem the dispatched passcode; a code verifies at most once
//	@Tags			Signing
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Param			request	body		VerifyOTPRequest	true	"Submitted code"
//	@Success		200		{object}	DocumentResponse	"document"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/sign/{token}/verify [post].
func (h *SignHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	doc, err := h.AgreementService.VerifyOTP(r.Context(), r.PathValue("token"), req.Code, requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// FinalizeResponse is the signed outcome: the canonical hash the timestamp
// proof is anchored to.
type FinalizeResponse struct {
	DocumentID string    `json:"document_id"`
	Hash       string    `json:"hash"`
	SignedAt   time.Time `json:"signed_at"`
}

// HandleFinalize godoc
//
//	@Summary		Finalize Signature Endpoint
//	@Description	Terminal signing transition: anchors the canonical hash and consumes the access token
//	@Tags			Signing
//	@Produce		json
//	@Param			token	path		string				true	"Access token"
//	@Success		200		{object}	FinalizeResponse	"document_id, hash, signed_at"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/sign/{token}/finalize [post].
func (h *SignHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.AgreementService.FinalizeSignature(r.Context(), r.PathValue("token"), requestActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, FinalizeResponse{
		DocumentID: result.DocumentID,
		Hash:       result.Hash,
		SignedAt:   result.SignedAt,
	})
}
