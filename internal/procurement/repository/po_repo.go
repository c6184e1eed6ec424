package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PORepository is the backing order store. Besides plain CRUD it owns the
// atomic transition procedure, the single source of truth for whether a
// status change is legal, and the narrow repair update the workflow
// service applies on known false-positive rejections.
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindAll lista de órdenes con filtros y paginación
func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if poType := filters["po_type"]; poType != "" {
		query = query.Where("po_type = ?", poType)
	}
	if purpose := filters["po_purpose"]; purpose != "" {
		query = query.Where("po_purpose = ?", purpose)
	}
	if workOrderID := filters["work_order_id"]; workOrderID != "" {
		query = query.Where("work_order_id = ?", workOrderID)
	}
	if plantID := filters["plant_id"]; plantID != "" {
		query = query.Where("plant_id = ?", plantID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_id ILIKE ? OR supplier ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID busca una orden por ID (con renglones)
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create inserta la orden y sus renglones en una sola escritura
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// ValidNextStatuses is the capability query: legal next statuses for an
// order in the given position. Ground truth for the workflow service.
func (r *PORepository) ValidNextStatuses(status, poType, poPurpose string) []string {
	return validNextStatuses(status, poType, poPurpose)
}

// RequiresQuotation re-derives the quote requirement server-side. The
// client-held flag on the order is advisory only.
func (r *PORepository) RequiresQuotation(poType string, amount float64, purpose string) entity.QuoteDecision {
	return entity.EvaluateQuoteRequirement(poType, amount, purpose)
}

// AdvanceTransition is the atomic transition procedure. It locks the order
// row, re-derives the quote requirement, checks legality and the approval
// gates, and mutates status together with its activity-log row in one
// transaction. Business rejections come back as a non-advanced outcome with
// a plain message; only infrastructure failures surface as errors.
func (r *PORepository) AdvanceTransition(ctx context.Context, orderID, newStatus, actorID, notes string) (*TransitionOutcome, error) {
	var rejection string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.PurchaseOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&po).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		allowed := validNextStatuses(po.Status, po.POType, po.POPurpose)
		if !contains(allowed, newStatus) {
			rejection = fmt.Sprintf("transición no permitida de %s a %s para órdenes %s", po.Status, newStatus, po.POType)
			return nil
		}

		decision := entity.EvaluateQuoteRequirement(po.POType, po.TotalAmount, po.POPurpose)
		requiresQuote := decision.RequiresQuote
		cashGated := requiresQuote && po.POPurpose != entity.PurposeWorkOrderInventory

		if newStatus == entity.StatusPendingApproval && cashGated && po.QuotationSelectionRequired {
			if po.QuotationSelectionStatus != entity.SelectionSelected {
				rejection = fmt.Sprintf("la selección de cotización está en %s; debe completarse antes de solicitar aprobación", po.QuotationSelectionStatus)
				return nil
			}
		}

		updates := map[string]interface{}{
			"status":         newStatus,
			"requires_quote": requiresQuote,
			"updated_at":     time.Now(),
		}

		if newStatus == entity.StatusApproved {
			if po.PaymentMethod == entity.PaymentTransfer && po.MaxPaymentDate != nil && beforeToday(*po.MaxPaymentDate) {
				rejection = msgStalePaymentDate
				return nil
			}
			// The procedure predates quotation_urls and still checks only
			// the legacy column. The workflow service compensates for the
			// false positive this produces; see ApplyApprovalRepair.
			if cashGated && po.QuotationURL == "" {
				rejection = msgMissingQuotation
				return nil
			}
			now := time.Now()
			updates["authorized_by"] = actorID
			updates["authorization_date"] = now
		}

		if err := tx.Model(&entity.PurchaseOrder{}).Where("id = ?", po.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		logRow := &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "po",
			EntityID:   po.ID,
			EntityCode: po.OrderID,
			Action:     entity.ActionStatusChange,
			FromStatus: po.Status,
			ToStatus:   newStatus,
			Content:    notes,
			OperatorID: actorID,
		}
		return tx.Create(logRow).Error
	})
	if err != nil {
		return nil, err
	}

	if rejection != "" {
		return classifyRejection(rejection), nil
	}
	return &TransitionOutcome{
		Advanced: true,
		Message:  fmt.Sprintf("Orden avanzada a %s", newStatus),
	}, nil
}

// classifyRejection maps the procedure's message text onto the two known
// reason codes. Substring matching is confined to this function; the store
// does not (yet) return structured codes.
func classifyRejection(message string) *TransitionOutcome {
	out := &TransitionOutcome{Message: message}
	switch {
	case strings.Contains(message, msgStalePaymentDate):
		out.Reason = ReasonStalePaymentDate
	case strings.Contains(message, msgMissingQuotation):
		out.Reason = ReasonMissingQuotation
	}
	return out
}

// ApplyApprovalRepair is the narrow compensating write: status,
// authorized_by and authorization_date only, bypassing the transition
// procedure. It re-reads the row under lock immediately before writing and
// records its own repair_approve audit entry. Callers are restricted to the
// two recognized false-positive rejections.
func (r *PORepository) ApplyApprovalRepair(ctx context.Context, orderID, actorID string, reason RejectionReason, storeMessage string) (*entity.PurchaseOrder, error) {
	var repaired entity.PurchaseOrder

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.PurchaseOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&po).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":             entity.StatusApproved,
			"authorized_by":      actorID,
			"authorization_date": now,
			"updated_at":         now,
		}
		if err := tx.Model(&entity.PurchaseOrder{}).Where("id = ?", po.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		logRow := &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "po",
			EntityID:   po.ID,
			EntityCode: po.OrderID,
			Action:     entity.ActionRepairApprove,
			FromStatus: po.Status,
			ToStatus:   entity.StatusApproved,
			Content:    fmt.Sprintf("aprobación por excepción de política: %s", storeMessage),
			Metadata: entity.JSONB{
				"reason":        string(reason),
				"store_message": storeMessage,
			},
			OperatorID: actorID,
		}
		if err := tx.Create(logRow).Error; err != nil {
			return err
		}

		repaired = po
		repaired.Status = entity.StatusApproved
		repaired.AuthorizedBy = &actorID
		repaired.AuthorizationDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &repaired, nil
}

// AppendQuotationURL adds an evidence reference to the canonical list. The
// legacy quotation_url column is read-only from here on; writes go to the
// list only.
func (r *PORepository) AppendQuotationURL(ctx context.Context, orderID, url, actorID string) (*entity.PurchaseOrder, error) {
	var updated entity.PurchaseOrder

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.PurchaseOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&po).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		for _, existing := range po.QuotationURLs {
			if existing == url {
				updated = po
				return nil
			}
		}
		po.QuotationURLs = append(po.QuotationURLs, url)

		if err := tx.Model(&entity.PurchaseOrder{}).Where("id = ?", po.ID).
			Updates(map[string]interface{}{
				"quotation_urls": po.QuotationURLs,
				"updated_at":     time.Now(),
			}).Error; err != nil {
			return err
		}

		logRow := &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "po",
			EntityID:   po.ID,
			EntityCode: po.OrderID,
			Action:     entity.ActionQuotationAdded,
			Content:    url,
			OperatorID: actorID,
		}
		if err := tx.Create(logRow).Error; err != nil {
			return err
		}

		updated = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetSelectionStatus moves the quotation-selection sub-process. It is
// independent of the main status field and never touches it.
func (r *PORepository) SetSelectionStatus(ctx context.Context, orderID, selectionStatus string) error {
	res := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"quotation_selection_status": selectionStatus,
			"updated_at":                 time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func contains(statuses []string, s string) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// beforeToday compares date-only, ignoring time of day.
func beforeToday(t time.Time) bool {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.Before(today)
}
