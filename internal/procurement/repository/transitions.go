package repository

import "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"

// RejectionReason is a structured code for the rejection patterns the
// workflow service knows how to compensate for. Anything the procedure
// rejects outside these two patterns stays unclassified and must be
// surfaced to the caller untouched.
type RejectionReason string

const (
	ReasonStalePaymentDate RejectionReason = "stale_payment_date"
	ReasonMissingQuotation RejectionReason = "missing_quotation"
)

// TransitionOutcome is the tagged result of the atomic transition
// procedure: either the order advanced, or it was rejected. Rejections
// carry a reason code when they match one of the known patterns.
type TransitionOutcome struct {
	Advanced bool            `json:"success"`
	Reason   RejectionReason `json:"reason,omitempty"`
	Message  string          `json:"message"`
}

// Rejection messages produced by the transition procedure. The procedure
// returns plain text; classifyRejection maps the two compensable patterns
// back to reason codes by matching on these fragments, in one place only.
const (
	msgStalePaymentDate = "la fecha límite de pago ya venció"
	msgMissingQuotation = "no hay cotización registrada para esta orden"
)

// validNextStatuses is the authoritative capability table: legal next
// statuses per (current status, order type, order purpose). Directed, no
// cycles, validated is terminal. The workflow service never duplicates
// this table; it asks.
func validNextStatuses(status, poType, poPurpose string) []string {
	switch poType {
	case entity.POTypeDirectPurchase, entity.POTypeDirectService:
		switch status {
		case entity.StatusDraft:
			return []string{entity.StatusPendingApproval}
		case entity.StatusPendingApproval:
			return []string{entity.StatusApproved}
		case entity.StatusApproved:
			return []string{entity.StatusPurchased}
		case entity.StatusPurchased:
			return []string{entity.StatusReceiptUploaded}
		case entity.StatusReceiptUploaded:
			return []string{entity.StatusValidated}
		}
	case entity.POTypeSpecialOrder:
		switch status {
		case entity.StatusDraft:
			// Inventory-funded special orders skip the quotation stage:
			// the cash-approval gate does not apply to them.
			if poPurpose == entity.PurposeWorkOrderInventory {
				return []string{entity.StatusQuoted, entity.StatusPendingApproval}
			}
			return []string{entity.StatusQuoted}
		case entity.StatusQuoted:
			return []string{entity.StatusPendingApproval}
		case entity.StatusPendingApproval:
			return []string{entity.StatusApproved}
		case entity.StatusApproved:
			return []string{entity.StatusOrdered}
		case entity.StatusOrdered:
			return []string{entity.StatusReceived}
		case entity.StatusReceived:
			return []string{entity.StatusReceiptUploaded}
		case entity.StatusReceiptUploaded:
			return []string{entity.StatusValidated}
		}
	}
	return []string{}
}
