package entity

import "time"

// PurchaseOrder orden de compra, aggregate root of the procurement workflow.
// Status is only ever mutated through the repository's atomic transition
// procedure (plus the two audited repair paths in the workflow service).
type PurchaseOrder struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;uniqueIndex;not null"` // PO-<ts6>-<rand3>

	POType    string `json:"po_type" gorm:"size:20;not null;index"`  // direct_purchase/direct_service/special_order
	POPurpose string `json:"po_purpose" gorm:"size:30;not null"`     // work_order_cash/work_order_inventory/inventory_restock
	Status    string `json:"status" gorm:"size:20;default:draft;index"`

	Supplier        string `json:"supplier" gorm:"size:200;not null"`
	ServiceProvider string `json:"service_provider" gorm:"size:200"` // direct_service only

	TotalAmount    float64    `json:"total_amount" gorm:"type:decimal(15,2);not null"`
	PaymentMethod  string     `json:"payment_method" gorm:"size:20"` // cash/transfer/card
	MaxPaymentDate *time.Time `json:"max_payment_date"`              // required when payment_method=transfer

	// Quotation gating
	RequiresQuote              bool   `json:"requires_quote" gorm:"default:false"`
	QuotationSelectionRequired bool   `json:"quotation_selection_required" gorm:"default:false"`
	QuotationSelectionStatus   string `json:"quotation_selection_status" gorm:"size:30;default:not_required"`

	// Evidence references. QuotationURLs is canonical; QuotationURL is the
	// legacy single-value column still read by the transition procedure.
	QuotationURL  string      `json:"quotation_url" gorm:"size:500"`
	QuotationURLs StringArray `json:"quotation_urls" gorm:"type:jsonb;default:'[]'"`

	// Attribution anchor: at least one of the two must be present.
	WorkOrderID *string `json:"work_order_id" gorm:"size:32;index"`
	PlantID     *string `json:"plant_id" gorm:"size:32;index"`

	// Set only by a successful transition into approved.
	AuthorizedBy      *string    `json:"authorized_by" gorm:"size:32"`
	AuthorizationDate *time.Time `json:"authorization_date"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []POItem `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// Order types
const (
	POTypeDirectPurchase = "direct_purchase"
	POTypeDirectService  = "direct_service"
	POTypeSpecialOrder   = "special_order"
)

// Order purposes
const (
	PurposeWorkOrderCash      = "work_order_cash"
	PurposeWorkOrderInventory = "work_order_inventory"
	PurposeInventoryRestock   = "inventory_restock"
)

// Order statuses
const (
	StatusDraft           = "draft"
	StatusQuoted          = "quoted" // special_order only
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusPurchased       = "purchased" // direct_purchase/direct_service
	StatusOrdered         = "ordered"   // special_order
	StatusReceived        = "received"  // special_order
	StatusReceiptUploaded = "receipt_uploaded"
	StatusValidated       = "validated" // terminal
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentCard     = "card"
)

// Quotation selection statuses
const (
	SelectionNotRequired       = "not_required"
	SelectionPendingQuotations = "pending_quotations"
	SelectionPendingSelection  = "pending_selection"
	SelectionSelected          = "selected"
)

// ValidPOType reports whether t is one of the three known order types.
func ValidPOType(t string) bool {
	return t == POTypeDirectPurchase || t == POTypeDirectService || t == POTypeSpecialOrder
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentTransfer || m == PaymentCard
}

// EffectiveQuotationURLs folds the legacy single column into the canonical
// list. The list wins; the legacy value is treated as an implicit first
// member when the list does not already carry it. Writes never touch the
// legacy column.
func (po *PurchaseOrder) EffectiveQuotationURLs() []string {
	urls := make([]string, 0, len(po.QuotationURLs)+1)
	if po.QuotationURL != "" {
		urls = append(urls, po.QuotationURL)
	}
	for _, u := range po.QuotationURLs {
		if u == "" || u == po.QuotationURL {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

// HasQuotationEvidence reports whether any quotation reference exists in
// either representation.
func (po *PurchaseOrder) HasQuotationEvidence() bool {
	if po.QuotationURL != "" {
		return true
	}
	for _, u := range po.QuotationURLs {
		if u != "" {
			return true
		}
	}
	return false
}

// POItem renglón de la orden de compra
type POItem struct {
	ID            string   `json:"id" gorm:"primaryKey;size:32"`
	POID          string   `json:"po_id" gorm:"size:32;not null;index"`
	Name          string   `json:"name" gorm:"size:200;not null"`
	Specification string   `json:"specification" gorm:"size:500"`
	Quantity      float64  `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit          string   `json:"unit" gorm:"size:20;default:pza"`
	UnitPrice     *float64 `json:"unit_price" gorm:"type:decimal(12,4)"`
	TotalAmount   *float64 `json:"total_amount" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (POItem) TableName() string {
	return "purchase_order_items"
}
