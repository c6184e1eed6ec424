package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/repository"
	"github.com/google/uuid"
)

// OrderService creación y consulta de órdenes de compra
type OrderService struct {
	poRepo  *repository.PORepository
	logRepo *repository.ActivityLogRepository
}

func NewOrderService(poRepo *repository.PORepository, logRepo *repository.ActivityLogRepository) *OrderService {
	return &OrderService{poRepo: poRepo, logRepo: logRepo}
}

// ValidateQuoteRequirement exposes the pure evaluator to callers.
func (s *OrderService) ValidateQuoteRequirement(poType string, amount float64, purpose string) entity.QuoteDecision {
	return entity.EvaluateQuoteRequirement(poType, amount, purpose)
}

// ListOrders lista de órdenes
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// GetOrder detalle de orden
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// CreateTypedPurchaseOrder assembles and persists a new order: human order
// id, purpose defaulting, quote evaluation and the initial status derived
// from it. Single insert; a persistence failure leaves nothing behind.
func (s *OrderService) CreateTypedPurchaseOrder(ctx context.Context, req *CreateOrderRequest, actorID string) (*entity.PurchaseOrder, error) {
	if result := ValidateCreateRequest(req); !result.IsValid {
		return nil, fmt.Errorf("solicitud inválida: %s", strings.Join(result.Errors, "; "))
	}

	purpose := req.POPurpose
	if purpose == "" {
		if req.WorkOrderID != nil && *req.WorkOrderID != "" {
			purpose = entity.PurposeWorkOrderCash
		} else {
			purpose = entity.PurposeInventoryRestock
		}
	}

	decision := entity.EvaluateQuoteRequirement(req.POType, req.TotalAmount, purpose)

	status := entity.StatusPendingApproval
	selectionStatus := entity.SelectionNotRequired
	if decision.RequiresQuote {
		status = entity.StatusDraft
		selectionStatus = entity.SelectionPendingQuotations
	}

	var maxPaymentDate *time.Time
	if req.MaxPaymentDate != "" {
		if d, err := time.ParseInLocation(maxPaymentDateLayout, req.MaxPaymentDate, time.Local); err == nil {
			maxPaymentDate = &d
		}
	}

	po := &entity.PurchaseOrder{
		ID:                         uuid.New().String()[:32],
		OrderID:                    generateOrderID(),
		POType:                     req.POType,
		POPurpose:                  purpose,
		Status:                     status,
		Supplier:                   req.Supplier,
		ServiceProvider:            req.ServiceProvider,
		TotalAmount:                req.TotalAmount,
		PaymentMethod:              req.PaymentMethod,
		MaxPaymentDate:             maxPaymentDate,
		RequiresQuote:              decision.RequiresQuote,
		QuotationSelectionRequired: decision.RequiresQuote,
		QuotationSelectionStatus:   selectionStatus,
		QuotationURLs:              entity.StringArray{},
		WorkOrderID:                req.WorkOrderID,
		PlantID:                    req.PlantID,
		CreatedBy:                  actorID,
		Notes:                      req.Notes,
	}

	for i, item := range req.Items {
		unit := item.Unit
		if unit == "" {
			unit = "pza"
		}
		var itemTotal *float64
		if item.UnitPrice != nil {
			t := *item.UnitPrice * item.Quantity
			itemTotal = &t
		}
		po.Items = append(po.Items, entity.POItem{
			ID:            uuid.New().String()[:32],
			POID:          po.ID,
			Name:          item.Name,
			Specification: item.Specification,
			Quantity:      item.Quantity,
			Unit:          unit,
			UnitPrice:     item.UnitPrice,
			TotalAmount:   itemTotal,
			SortOrder:     i + 1,
			Notes:         item.Notes,
		})
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("crear orden de compra: %w", err)
	}

	s.logRepo.Create(ctx, &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: "po",
		EntityID:   po.ID,
		EntityCode: po.OrderID,
		Action:     entity.ActionCreate,
		ToStatus:   po.Status,
		Content:    decision.Reason,
		OperatorID: actorID,
	})

	return po, nil
}

// generateOrderID builds the human-readable order id in the
// PO-<timestamp6>-<random3> format. Not globally unique on its own; the
// unique index on order_id is the real guard, and collisions at expected
// volumes are negligible.
func generateOrderID() string {
	return fmt.Sprintf("PO-%06d-%03d", time.Now().UnixMilli()%1000000, rand.IntN(1000))
}
