package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/pkg/httpx"
)

type DocumentsHandler struct {
	DocumentService *service.DocumentService
}

// CreateDocumentRequest is the staff payload for a new document.
type CreateDocumentRequest struct {
	Kind          string `json:"kind"`
	EmployeeID    string `json:"employee_id"`
	EmployeeTaxID string `json:"employee_tax_id,omitempty"`
	Recipient     string `json:"recipient"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	TokenTTLHours int    `json:"token_ttl_hours,omitempty"`
}

// CreateDocumentResponse carries the raw access token, shown exactly once.
type CreateDocumentResponse struct {
	Document DocumentResponse `json:"document"`
	Token    string           `json:"token"`
}

// HandleCreate godoc
//
//	@Summary		Create Document Endpoint
//	@Description	Create an agreement or rebuttal document and issue its access token
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateDocumentRequest	true	"Document material"
//	@Success		201		{object}	CreateDocumentResponse	"document, token"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/documents [post].
func (h *DocumentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := h.DocumentService.Create(r.Context(), service.CreateDocumentParams{
		Kind:          domain.Kind(req.Kind),
		EmployeeID:    req.EmployeeID,
		EmployeeTaxID: req.EmployeeTaxID,
		Recipient:     req.Recipient,
		Subject:       req.Subject,
		Body:          req.Body,
		TokenTTL:      time.Duration(req.TokenTTLHours) * time.Hour,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, CreateDocumentResponse{
		Document: toDocumentResponse(result.Document),
		Token:    result.Token,
	})
}

// DocumentDetailResponse pairs the aggregate with its proof, when one exists.
type DocumentDetailResponse struct {
	Document DocumentResponse  `json:"document"`
	Proof    *domain.ProofWire `json:"proof,omitempty"`
}

// HandleGet godoc
//
//	@Summary		Get Document Endpoint
//	@Description	Fetch a document aggregate and, once anchored, its timestamp proof
//	@Tags			Documents
//	@Produce		json
//	@Param			id	path		string					true	"Document ID"
//	@Success		200	{object}	DocumentDetailResponse	"document, proof"
//	@Failure		404	{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/documents/{id} [get].
func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	doc, err := h.DocumentService.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := DocumentDetailResponse{Document: toDocumentResponse(doc)}
	if proof, err := h.DocumentService.GetProof(ctx, id); err == nil {
		wire := proof.Wire()
		resp.Proof = &wire
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleAudit godoc
//
//	@Summary		Document Audit Trail Endpoint
//	@Description	List the document's audit events in insertion order
//	@Tags			Documents
//	@Produce		json
//	@Param			id	path		string					true	"Document ID"
//	@Success		200	{array}		AuditEventResponse		"events"
//	@Failure		404	{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/documents/{id}/audit [get].
func (h *DocumentsHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	events, err := h.DocumentService.ListAudit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuditResponse(events))
}

// HandleRevoke godoc
//
//	@Summary		Revoke Document Endpoint
//	@Description	Terminally revoke a document; its access token stops working
//	@Tags			Documents
//	@Produce		json
//	@Param			id	path		string					true	"Document ID"
//	@Success		200	{object}	DocumentResponse		"document"
//	@Failure		404	{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		409	{object}	httpx.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/documents/{id}/revoke [post].
func (h *DocumentsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.DocumentService.Revoke(ctx, r.PathValue("id"), httpx.StaffIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}
