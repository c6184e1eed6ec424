package handler

import (
	"errors"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/repository"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/service"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/storage"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler transiciones y estado del flujo
type WorkflowHandler struct {
	svc      *service.WorkflowService
	evidence *storage.EvidenceStore // nil when object storage is not configured
}

func NewWorkflowHandler(svc *service.WorkflowService, evidence *storage.EvidenceStore) *WorkflowHandler {
	return &WorkflowHandler{svc: svc, evidence: evidence}
}

// AdvanceRequest solicitud de avance de estatus
type AdvanceRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
	Notes     string `json:"notes"`
}

// Advance solicita una transición de estatus
// POST /api/v1/purchase-orders/:id/advance
func (h *WorkflowHandler) Advance(c *gin.Context) {
	id := c.Param("id")
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	actorID := GetUserID(c)
	outcome, err := h.svc.AdvanceWorkflow(c.Request.Context(), id, req.NewStatus, actorID, req.Notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "La orden de compra no existe")
			return
		}
		// Pre-flight hard stops: the message is the guidance.
		var preflight *service.PreflightError
		if errors.As(err, &preflight) {
			BadRequest(c, preflight.Message)
			return
		}
		InternalError(c, "Error al procesar la transición: "+err.Error())
		return
	}

	if !outcome.Advanced {
		Conflict(c, outcome.Message)
		return
	}
	Success(c, outcome)
}

// GetStatus estado del flujo
// GET /api/v1/purchase-orders/:id/workflow-status
func (h *WorkflowHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")
	status, err := h.svc.GetWorkflowStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "La orden de compra no existe")
			return
		}
		InternalError(c, "Error al consultar el flujo: "+err.Error())
		return
	}
	Success(c, status)
}

// QuotationRequest referencia de cotización
type QuotationRequest struct {
	URL string `json:"url" binding:"required"`
}

// AddQuotation registra una referencia de cotización
// POST /api/v1/purchase-orders/:id/quotations
func (h *WorkflowHandler) AddQuotation(c *gin.Context) {
	id := c.Param("id")
	var req QuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	po, err := h.svc.AddQuotationReference(c.Request.Context(), id, req.URL, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "La orden de compra no existe")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, po)
}

// SelectQuotation marca la cotización ganadora
// POST /api/v1/purchase-orders/:id/quotations/select
func (h *WorkflowHandler) SelectQuotation(c *gin.Context) {
	id := c.Param("id")
	var req QuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	if err := h.svc.SelectQuotation(c.Request.Context(), id, req.URL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "La orden de compra no existe")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{"quotation_selection_status": "selected"})
}

// UploadURLRequest solicitud de URL de carga
type UploadURLRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// QuotationUploadURL entrega una URL prefirmada para subir evidencia
// POST /api/v1/purchase-orders/:id/quotations/upload-url
func (h *WorkflowHandler) QuotationUploadURL(c *gin.Context) {
	if h.evidence == nil {
		Error(c, 50300, "El almacenamiento de evidencias no está configurado")
		return
	}

	id := c.Param("id")
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	uploadURL, objectKey, err := h.evidence.PresignedUpload(c.Request.Context(), id, req.Filename)
	if err != nil {
		InternalError(c, "Error al generar la URL de carga: "+err.Error())
		return
	}

	Success(c, gin.H{
		"upload_url": uploadURL,
		"object_key": objectKey,
	})
}

// DownloadURLRequest solicitud de URL de descarga
type DownloadURLRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// QuotationDownloadURL entrega una URL prefirmada para consultar evidencia
// POST /api/v1/purchase-orders/:id/quotations/download-url
func (h *WorkflowHandler) QuotationDownloadURL(c *gin.Context) {
	if h.evidence == nil {
		Error(c, 50300, "El almacenamiento de evidencias no está configurado")
		return
	}

	var req DownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	downloadURL, err := h.evidence.PresignedDownload(c.Request.Context(), req.ObjectKey)
	if err != nil {
		InternalError(c, "Error al generar la URL de descarga: "+err.Error())
		return
	}

	Success(c, gin.H{"download_url": downloadURL})
}
