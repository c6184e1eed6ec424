package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pre-flight error messages. Callers render targeted guidance from these,
// so the text is part of the contract.
const (
	MsgQuotationsPending = "Se requieren al menos dos cotizaciones antes de solicitar aprobación"
	MsgSelectionPending  = "Debe seleccionar un proveedor entre las cotizaciones recibidas"
	MsgItemsMissing      = "La orden no tiene artículos registrados; no puede solicitar aprobación"
)

const statusCacheTTL = 30 * time.Second

// PreflightError is a pre-flight business stop. The message is the
// caller-facing guidance; infrastructure failures never use this type.
type PreflightError struct {
	Message string
}

func (e *PreflightError) Error() string {
	return e.Message
}

// WorkflowService is the transition orchestrator. It runs the pre-flight
// checks the backing procedure does not see, delegates legality to the
// procedure, and compensates for the two known false-positive rejections
// with a narrow repair write.
type WorkflowService struct {
	poRepo *repository.PORepository
	logger *zap.Logger
	rdb    *redis.Client // optional; nil disables the status cache
}

func NewWorkflowService(poRepo *repository.PORepository, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{poRepo: poRepo, logger: logger}
}

// SetRedis enables the short-TTL workflow status cache.
func (s *WorkflowService) SetRedis(rdb *redis.Client) {
	s.rdb = rdb
}

// AdvanceWorkflow requests a status change. Pre-flight failures are hard
// stops returned as errors before any store call; store rejections come
// back inside the outcome, unmodified unless one of the two compensating
// paths applies.
func (s *WorkflowService) AdvanceWorkflow(ctx context.Context, orderID, newStatus, actorID, notes string) (*repository.TransitionOutcome, error) {
	if newStatus == entity.StatusPendingApproval {
		if err := s.preflightApprovalRequest(ctx, orderID); err != nil {
			return nil, err
		}
	}

	outcome, err := s.poRepo.AdvanceTransition(ctx, orderID, newStatus, actorID, notes)
	if err != nil {
		return nil, fmt.Errorf("procedimiento de transición: %w", err)
	}

	if outcome.Advanced {
		s.invalidateStatusCache(ctx, orderID)
		return outcome, nil
	}

	// Compensating repair applies only to approval requests, and only to
	// the two rejection patterns known to be false positives. Everything
	// else goes back to the caller untouched.
	if newStatus != entity.StatusApproved {
		return outcome, nil
	}

	switch outcome.Reason {
	case repository.ReasonStalePaymentDate:
		// The stale-payment-date rule was superseded by finance policy;
		// the procedure still enforces it. Override, audited.
		return s.repairApproval(ctx, orderID, actorID, outcome)

	case repository.ReasonMissingQuotation:
		// The procedure checks only the legacy quotation_url column. If
		// evidence exists in either representation the rejection is a
		// data-representation mismatch, not a real violation.
		po, ferr := s.poRepo.FindByID(ctx, orderID)
		if ferr != nil {
			return nil, fmt.Errorf("releer orden para reparación: %w", ferr)
		}
		if po.HasQuotationEvidence() {
			return s.repairApproval(ctx, orderID, actorID, outcome)
		}
		return outcome, nil

	default:
		return outcome, nil
	}
}

// repairApproval applies the narrow policy-exception write and logs it.
func (s *WorkflowService) repairApproval(ctx context.Context, orderID, actorID string, rejected *repository.TransitionOutcome) (*repository.TransitionOutcome, error) {
	po, err := s.poRepo.ApplyApprovalRepair(ctx, orderID, actorID, rejected.Reason, rejected.Message)
	if err != nil {
		return nil, fmt.Errorf("reparación de aprobación: %w", err)
	}

	s.logger.Warn("aprobación por excepción de política",
		zap.String("order_id", po.OrderID),
		zap.String("reason", string(rejected.Reason)),
		zap.String("store_message", rejected.Message),
		zap.String("authorized_by", actorID),
	)

	s.invalidateStatusCache(ctx, orderID)
	return &repository.TransitionOutcome{
		Advanced: true,
		Message:  "Orden aprobada por excepción de política",
	}, nil
}

// preflightApprovalRequest enforces the gates the backing procedure does
// not see: quotation selection completeness and non-empty items. Inventory-
// funded orders skip the quotation gate entirely.
func (s *WorkflowService) preflightApprovalRequest(ctx context.Context, orderID string) error {
	po, err := s.poRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if po.POPurpose == entity.PurposeWorkOrderInventory {
		return nil
	}

	if po.QuotationSelectionRequired {
		switch po.QuotationSelectionStatus {
		case entity.SelectionSelected:
			// ok
		case entity.SelectionPendingQuotations:
			return &PreflightError{Message: MsgQuotationsPending}
		case entity.SelectionPendingSelection:
			return &PreflightError{Message: MsgSelectionPending}
		default:
			return &PreflightError{Message: fmt.Sprintf("la selección de cotización está en estado %s; no puede solicitar aprobación", po.QuotationSelectionStatus)}
		}

		if len(po.Items) == 0 {
			return &PreflightError{Message: MsgItemsMissing}
		}
	}

	return nil
}

// WorkflowStatusResponse estado del flujo de una orden
type WorkflowStatusResponse struct {
	OrderID             string     `json:"order_id"`
	CurrentStatus       string     `json:"current_status"`
	AllowedNextStatuses []string   `json:"allowed_next_statuses"`
	RequiresQuote       bool       `json:"requires_quote"`
	CanAdvance          bool       `json:"can_advance"`
	WorkflowStage       string     `json:"workflow_stage"`
	Recommendation      string     `json:"recommendation"`
	AuthorizedBy        *string    `json:"authorized_by,omitempty"`
	AuthorizationDate   *time.Time `json:"authorization_date,omitempty"`
}

// GetWorkflowStatus is the read-only projection: current position, legal
// next statuses from the capability query, and presentation labels.
// Idempotent; cached for a short TTL when redis is wired.
func (s *WorkflowService) GetWorkflowStatus(ctx context.Context, orderID string) (*WorkflowStatusResponse, error) {
	if cached := s.readStatusCache(ctx, orderID); cached != nil {
		return cached, nil
	}

	po, err := s.poRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := s.poRepo.ValidNextStatuses(po.Status, po.POType, po.POPurpose)
	stage, recommendation := WorkflowStage(po.Status, po.POType)

	resp := &WorkflowStatusResponse{
		OrderID:             po.OrderID,
		CurrentStatus:       po.Status,
		AllowedNextStatuses: allowed,
		RequiresQuote:       po.RequiresQuote,
		CanAdvance:          len(allowed) > 0,
		WorkflowStage:       stage,
		Recommendation:      recommendation,
		AuthorizedBy:        po.AuthorizedBy,
		AuthorizationDate:   po.AuthorizationDate,
	}

	s.writeStatusCache(ctx, orderID, resp)
	return resp, nil
}

// AddQuotationReference appends an evidence reference to the canonical
// list and moves the selection sub-process forward once two quotations
// exist.
func (s *WorkflowService) AddQuotationReference(ctx context.Context, orderID, url, actorID string) (*entity.PurchaseOrder, error) {
	if url == "" {
		return nil, fmt.Errorf("la referencia de cotización no puede estar vacía")
	}

	po, err := s.poRepo.AppendQuotationURL(ctx, orderID, url, actorID)
	if err != nil {
		return nil, err
	}

	if po.QuotationSelectionRequired &&
		po.QuotationSelectionStatus == entity.SelectionPendingQuotations &&
		len(po.EffectiveQuotationURLs()) >= 2 {
		if err := s.poRepo.SetSelectionStatus(ctx, orderID, entity.SelectionPendingSelection); err != nil {
			return nil, err
		}
		po.QuotationSelectionStatus = entity.SelectionPendingSelection
	}

	return po, nil
}

// SelectQuotation marks the comparison sub-process as resolved. The chosen
// reference must be one of the registered quotations.
func (s *WorkflowService) SelectQuotation(ctx context.Context, orderID, selectedURL string) error {
	po, err := s.poRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if po.QuotationSelectionStatus != entity.SelectionPendingSelection {
		return fmt.Errorf("la orden no está en etapa de selección (estado: %s)", po.QuotationSelectionStatus)
	}

	found := false
	for _, u := range po.EffectiveQuotationURLs() {
		if u == selectedURL {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("la cotización seleccionada no está registrada en la orden")
	}

	return s.poRepo.SetSelectionStatus(ctx, orderID, entity.SelectionSelected)
}

func statusCacheKey(orderID string) string {
	return "po:workflow_status:" + orderID
}

func (s *WorkflowService) readStatusCache(ctx context.Context, orderID string) *WorkflowStatusResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, statusCacheKey(orderID)).Bytes()
	if err != nil {
		return nil
	}
	var resp WorkflowStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *WorkflowService) writeStatusCache(ctx context.Context, orderID string, resp *WorkflowStatusResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.rdb.Set(ctx, statusCacheKey(orderID), raw, statusCacheTTL)
}

func (s *WorkflowService) invalidateStatusCache(ctx context.Context, orderID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, statusCacheKey(orderID))
}
