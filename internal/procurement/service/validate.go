package service

import (
	"fmt"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
)

// CreateOrderRequest solicitud de creación de orden de compra
type CreateOrderRequest struct {
	WorkOrderID *string `json:"work_order_id"`
	PlantID     *string `json:"plant_id"`

	POType    string `json:"po_type" binding:"required"`
	POPurpose string `json:"po_purpose"`

	Supplier        string  `json:"supplier"`
	ServiceProvider string  `json:"service_provider"`
	TotalAmount     float64 `json:"total_amount"`
	PaymentMethod   string  `json:"payment_method"`
	MaxPaymentDate  string  `json:"max_payment_date"` // YYYY-MM-DD

	Items []CreateOrderItem `json:"items"`
	Notes string            `json:"notes"`
}

type CreateOrderItem struct {
	Name          string   `json:"name" binding:"required"`
	Specification string   `json:"specification"`
	Quantity      float64  `json:"quantity" binding:"required"`
	Unit          string   `json:"unit"`
	UnitPrice     *float64 `json:"unit_price"`
	Notes         string   `json:"notes"`
}

// ValidationResult is the accumulated outcome of ValidateCreateRequest.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

const maxPaymentDateLayout = "2006-01-02"

// ValidateCreateRequest runs the structural and business checks on a
// creation request. Every applicable error is collected; nothing
// short-circuits, so the caller can show all problems at once. No I/O.
func ValidateCreateRequest(req *CreateOrderRequest) ValidationResult {
	var errs []string

	// Exactly one attribution anchor: a work order or a plant, never both.
	hasWorkOrder := req.WorkOrderID != nil && *req.WorkOrderID != ""
	hasPlant := req.PlantID != nil && *req.PlantID != ""
	if !hasWorkOrder && !hasPlant {
		errs = append(errs, "La orden debe estar ligada a una orden de trabajo o a una planta")
	} else if hasWorkOrder && hasPlant {
		errs = append(errs, "La orden no puede estar ligada a una orden de trabajo y a una planta a la vez")
	}

	if req.POType == "" {
		errs = append(errs, "El tipo de orden es obligatorio")
	} else if !entity.ValidPOType(req.POType) {
		errs = append(errs, fmt.Sprintf("Tipo de orden desconocido: %s", req.POType))
	}

	if req.Supplier == "" {
		errs = append(errs, "El proveedor es obligatorio")
	}

	if req.TotalAmount <= 0 {
		errs = append(errs, "El monto total debe ser mayor a cero")
	}

	if req.POType == entity.POTypeDirectService && req.ServiceProvider == "" {
		errs = append(errs, "Los servicios directos requieren indicar el prestador del servicio")
	}

	if req.PaymentMethod != "" && !entity.ValidPaymentMethod(req.PaymentMethod) {
		errs = append(errs, fmt.Sprintf("Forma de pago desconocida: %s", req.PaymentMethod))
	}

	if req.PaymentMethod == entity.PaymentTransfer {
		if req.MaxPaymentDate == "" {
			errs = append(errs, "Las transferencias requieren fecha límite de pago")
		} else if d, err := time.ParseInLocation(maxPaymentDateLayout, req.MaxPaymentDate, time.Local); err != nil {
			errs = append(errs, fmt.Sprintf("Fecha límite de pago inválida: %s", req.MaxPaymentDate))
		} else if dateBefore(d, time.Now()) {
			errs = append(errs, "La fecha límite de pago no puede ser anterior a hoy")
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// dateBefore compares calendar dates only; time of day never matters here.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
