package repository

import (
	"reflect"
	"testing"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
)

// TestValidNextStatusesDirectChain tests the chain shared by direct types
func TestValidNextStatusesDirectChain(t *testing.T) {
	for _, poType := range []string{entity.POTypeDirectPurchase, entity.POTypeDirectService} {
		chain := map[string][]string{
			entity.StatusDraft:           {entity.StatusPendingApproval},
			entity.StatusPendingApproval: {entity.StatusApproved},
			entity.StatusApproved:        {entity.StatusPurchased},
			entity.StatusPurchased:       {entity.StatusReceiptUploaded},
			entity.StatusReceiptUploaded: {entity.StatusValidated},
			entity.StatusValidated:       {},
		}
		for status, want := range chain {
			got := validNextStatuses(status, poType, entity.PurposeWorkOrderCash)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("%s/%s: got %v, want %v", poType, status, got, want)
			}
		}
	}
}

// TestValidNextStatusesSpecialOrderChain tests the extended special_order chain
func TestValidNextStatusesSpecialOrderChain(t *testing.T) {
	chain := map[string][]string{
		entity.StatusDraft:           {entity.StatusQuoted},
		entity.StatusQuoted:          {entity.StatusPendingApproval},
		entity.StatusPendingApproval: {entity.StatusApproved},
		entity.StatusApproved:        {entity.StatusOrdered},
		entity.StatusOrdered:         {entity.StatusReceived},
		entity.StatusReceived:        {entity.StatusReceiptUploaded},
		entity.StatusReceiptUploaded: {entity.StatusValidated},
		entity.StatusValidated:       {},
	}
	for status, want := range chain {
		got := validNextStatuses(status, entity.POTypeSpecialOrder, entity.PurposeWorkOrderCash)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("special_order/%s: got %v, want %v", status, got, want)
		}
	}
}

// TestValidNextStatusesInventorySkipsQuoting tests the inventory-funded shortcut
func TestValidNextStatusesInventorySkipsQuoting(t *testing.T) {
	got := validNextStatuses(entity.StatusDraft, entity.POTypeSpecialOrder, entity.PurposeWorkOrderInventory)
	want := []string{entity.StatusQuoted, entity.StatusPendingApproval}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("inventory draft: got %v, want %v", got, want)
	}
}

// TestValidNextStatusesNeverCrossType tests that type-specific statuses stay fenced
func TestValidNextStatusesNeverCrossType(t *testing.T) {
	// quoted is meaningless for direct types
	if got := validNextStatuses(entity.StatusQuoted, entity.POTypeDirectPurchase, entity.PurposeWorkOrderCash); len(got) != 0 {
		t.Fatalf("quoted on direct_purchase must dead-end, got %v", got)
	}
	// purchased is meaningless for special orders
	if got := validNextStatuses(entity.StatusPurchased, entity.POTypeSpecialOrder, entity.PurposeWorkOrderCash); len(got) != 0 {
		t.Fatalf("purchased on special_order must dead-end, got %v", got)
	}
	// unknown type yields nothing
	if got := validNextStatuses(entity.StatusDraft, "mystery", entity.PurposeWorkOrderCash); len(got) != 0 {
		t.Fatalf("unknown type must yield nothing, got %v", got)
	}
}

// TestClassifyRejection tests the message-to-reason mapping
func TestClassifyRejection(t *testing.T) {
	out := classifyRejection(msgStalePaymentDate)
	if out.Advanced || out.Reason != ReasonStalePaymentDate {
		t.Fatalf("stale date message: got %+v", out)
	}

	out = classifyRejection(msgMissingQuotation)
	if out.Advanced || out.Reason != ReasonMissingQuotation {
		t.Fatalf("missing quotation message: got %+v", out)
	}

	out = classifyRejection("transición no permitida de draft a validated para órdenes direct_purchase")
	if out.Reason != "" {
		t.Fatalf("unrelated rejection must stay unclassified, got %q", out.Reason)
	}
	if out.Message == "" {
		t.Fatal("message must be preserved")
	}
}
