package entity

import "time"

// ActivityLog bitácora de la orden: one row per creation, per successful
// transition, and per compensating repair. Repair rows are the audit trail
// the policy-exception paths depend on.
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	EntityType string `json:"entity_type" gorm:"size:50;not null;index:idx_activity_entity"` // po
	EntityID   string `json:"entity_id" gorm:"size:32;not null;index:idx_activity_entity"`
	EntityCode string `json:"entity_code" gorm:"size:50"`

	Action     string `json:"action" gorm:"size:50;not null"` // create/status_change/quotation_added/repair_approve
	FromStatus string `json:"from_status" gorm:"size:20"`
	ToStatus   string `json:"to_status" gorm:"size:20"`

	Content  string `json:"content" gorm:"type:text"`
	Metadata JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "po_activity_logs"
}

// Activity actions
const (
	ActionCreate         = "create"
	ActionStatusChange   = "status_change"
	ActionQuotationAdded = "quotation_added"
	ActionRepairApprove  = "repair_approve"
)
