package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/testutil"
)

func seedOrder(t *testing.T, repo *PORepository, mutate func(po *entity.PurchaseOrder)) *entity.PurchaseOrder {
	t.Helper()
	wo := "wo-test-001"
	po := &entity.PurchaseOrder{
		ID:            uuid.New().String()[:32],
		OrderID:       "PO-" + uuid.New().String()[:8],
		POType:        entity.POTypeDirectPurchase,
		POPurpose:     entity.PurposeWorkOrderCash,
		Status:        entity.StatusDraft,
		Supplier:      "Proveedor de Prueba",
		TotalAmount:   1500,
		PaymentMethod: entity.PaymentCash,
		QuotationURLs: entity.StringArray{},
		WorkOrderID:   &wo,
		CreatedBy:     "test-user-001",
	}
	if mutate != nil {
		mutate(po)
	}
	if err := repo.Create(context.Background(), po); err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return po
}

// TestAdvanceTransitionHappyPath tests a legal transition with its audit row
func TestAdvanceTransitionHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	po := seedOrder(t, repos.PO, nil)

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusPendingApproval, "approver-01", "listo para revisión")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if !outcome.Advanced {
		t.Fatalf("expected advance, got rejection: %s", outcome.Message)
	}

	reloaded, err := repos.PO.FindByID(ctx, po.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if reloaded.Status != entity.StatusPendingApproval {
		t.Fatalf("status = %s, want pending_approval", reloaded.Status)
	}

	logs, err := repos.ActivityLog.FindByEntity(ctx, "po", po.ID, 10)
	if err != nil {
		t.Fatalf("FindByEntity failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 activity row, got %d", len(logs))
	}
	if logs[0].Action != entity.ActionStatusChange || logs[0].ToStatus != entity.StatusPendingApproval {
		t.Fatalf("unexpected audit row: %+v", logs[0])
	}
}

// TestAdvanceTransitionIllegal tests that skipping stages is rejected without writes
func TestAdvanceTransitionIllegal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	po := seedOrder(t, repos.PO, nil)

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusValidated, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if outcome.Advanced {
		t.Fatal("draft → validated must be rejected")
	}
	if outcome.Reason != "" {
		t.Fatalf("illegal transition must stay unclassified, got %q", outcome.Reason)
	}

	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	if reloaded.Status != entity.StatusDraft {
		t.Fatalf("rejected transition must not mutate status, got %s", reloaded.Status)
	}

	logs, _ := repos.ActivityLog.FindByEntity(ctx, "po", po.ID, 10)
	if len(logs) != 0 {
		t.Fatalf("rejected transition must not log, got %d rows", len(logs))
	}
}

// TestAdvanceTransitionUnknownOrder tests the not-found error path
func TestAdvanceTransitionUnknownOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)

	_, err := repos.PO.AdvanceTransition(context.Background(), "no-such-id", entity.StatusApproved, "x", "")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestAdvanceTransitionStalePaymentDate tests the stale transfer date rejection
func TestAdvanceTransitionStalePaymentDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.Status = entity.StatusPendingApproval
		po.PaymentMethod = entity.PaymentTransfer
		po.MaxPaymentDate = &yesterday
	})

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusApproved, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if outcome.Advanced {
		t.Fatal("stale payment date must reject the approval")
	}
	if outcome.Reason != ReasonStalePaymentDate {
		t.Fatalf("reason = %q, want stale_payment_date (message: %s)", outcome.Reason, outcome.Message)
	}

	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	if reloaded.Status != entity.StatusPendingApproval || reloaded.AuthorizedBy != nil {
		t.Fatalf("rejection must leave the row untouched: %+v", reloaded)
	}
}

// TestAdvanceTransitionTodayPaymentDateApproves tests the date-only comparison
func TestAdvanceTransitionTodayPaymentDateApproves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	today := time.Now()
	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.Status = entity.StatusPendingApproval
		po.PaymentMethod = entity.PaymentTransfer
		po.MaxPaymentDate = &today
	})

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusApproved, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if !outcome.Advanced {
		t.Fatalf("a payment date of today must still approve: %s", outcome.Message)
	}

	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	if reloaded.AuthorizedBy == nil || *reloaded.AuthorizedBy != "approver-01" {
		t.Fatalf("approval must set authorized_by, got %+v", reloaded.AuthorizedBy)
	}
	if reloaded.AuthorizationDate == nil {
		t.Fatal("approval must set authorization_date")
	}
}

// TestAdvanceTransitionMissingQuotation tests the legacy-column quotation gate
func TestAdvanceTransitionMissingQuotation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	// Quote-gated service order: evidence lives only in the canonical list,
	// which the procedure does not read.
	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.POType = entity.POTypeDirectService
		po.ServiceProvider = "Talleres Unidos"
		po.TotalAmount = 8000
		po.Status = entity.StatusPendingApproval
		po.QuotationURLs = entity.StringArray{"https://evidence/quote1.pdf"}
	})

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusApproved, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if outcome.Advanced {
		t.Fatal("empty legacy quotation_url must reject the approval")
	}
	if outcome.Reason != ReasonMissingQuotation {
		t.Fatalf("reason = %q, want missing_quotation (message: %s)", outcome.Reason, outcome.Message)
	}
}

// TestAdvanceTransitionLegacyQuotationApproves tests that the legacy column satisfies the gate
func TestAdvanceTransitionLegacyQuotationApproves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.POType = entity.POTypeDirectService
		po.ServiceProvider = "Talleres Unidos"
		po.TotalAmount = 8000
		po.Status = entity.StatusPendingApproval
		po.QuotationURL = "https://evidence/quote1.pdf"
	})

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusApproved, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if !outcome.Advanced {
		t.Fatalf("legacy quotation must satisfy the gate: %s", outcome.Message)
	}
}

// TestAdvanceTransitionInventoryPurposeSkipsGate tests the inventory funding exemption
func TestAdvanceTransitionInventoryPurposeSkipsGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	// Quote-worthy amount, but inventory-funded: no quotation gate at all.
	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.POType = entity.POTypeDirectService
		po.ServiceProvider = "Talleres Unidos"
		po.POPurpose = entity.PurposeWorkOrderInventory
		po.TotalAmount = 9000
		po.Status = entity.StatusPendingApproval
	})

	outcome, err := repos.PO.AdvanceTransition(ctx, po.ID, entity.StatusApproved, "approver-01", "")
	if err != nil {
		t.Fatalf("AdvanceTransition failed: %v", err)
	}
	if !outcome.Advanced {
		t.Fatalf("inventory purpose must skip the quotation gate: %s", outcome.Message)
	}
}

// TestApplyApprovalRepair tests the narrow compensating write and its audit trail
func TestApplyApprovalRepair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.Status = entity.StatusPendingApproval
		po.PaymentMethod = entity.PaymentTransfer
		po.MaxPaymentDate = &yesterday
		po.Notes = "notas originales"
	})

	repaired, err := repos.PO.ApplyApprovalRepair(ctx, po.ID, "approver-01", ReasonStalePaymentDate, msgStalePaymentDate)
	if err != nil {
		t.Fatalf("ApplyApprovalRepair failed: %v", err)
	}
	if repaired.Status != entity.StatusApproved {
		t.Fatalf("status = %s, want approved", repaired.Status)
	}

	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	if reloaded.Status != entity.StatusApproved {
		t.Fatalf("status = %s, want approved", reloaded.Status)
	}
	if reloaded.AuthorizedBy == nil || *reloaded.AuthorizedBy != "approver-01" {
		t.Fatal("repair must set authorized_by")
	}
	if reloaded.AuthorizationDate == nil {
		t.Fatal("repair must set authorization_date")
	}
	// The repair writes nothing else
	if reloaded.Notes != "notas originales" {
		t.Fatalf("repair touched notes: %q", reloaded.Notes)
	}
	if reloaded.MaxPaymentDate == nil {
		t.Fatal("repair must not clear max_payment_date")
	}

	logs, _ := repos.ActivityLog.FindByEntity(ctx, "po", po.ID, 10)
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(logs))
	}
	row := logs[0]
	if row.Action != entity.ActionRepairApprove {
		t.Fatalf("action = %s, want repair_approve", row.Action)
	}
	if row.Metadata["reason"] != string(ReasonStalePaymentDate) {
		t.Fatalf("metadata reason = %v", row.Metadata["reason"])
	}
	if row.Metadata["store_message"] != msgStalePaymentDate {
		t.Fatalf("metadata store_message = %v", row.Metadata["store_message"])
	}
}

// TestAppendQuotationURL tests canonical-list appends with dedup
func TestAppendQuotationURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.QuotationURL = "https://evidence/legacy.pdf"
	})

	updated, err := repos.PO.AppendQuotationURL(ctx, po.ID, "https://evidence/q1.pdf", "test-user-001")
	if err != nil {
		t.Fatalf("AppendQuotationURL failed: %v", err)
	}
	if len(updated.QuotationURLs) != 1 {
		t.Fatalf("expected 1 canonical entry, got %v", updated.QuotationURLs)
	}
	// Legacy column untouched
	if updated.QuotationURL != "https://evidence/legacy.pdf" {
		t.Fatalf("legacy column mutated: %q", updated.QuotationURL)
	}

	// Duplicate append is a no-op
	updated, err = repos.PO.AppendQuotationURL(ctx, po.ID, "https://evidence/q1.pdf", "test-user-001")
	if err != nil {
		t.Fatalf("duplicate append failed: %v", err)
	}
	if len(updated.QuotationURLs) != 1 {
		t.Fatalf("duplicate append must not grow the list: %v", updated.QuotationURLs)
	}

	// Effective view folds legacy + canonical
	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	effective := reloaded.EffectiveQuotationURLs()
	if len(effective) != 2 {
		t.Fatalf("expected 2 effective urls, got %v", effective)
	}

	logs, _ := repos.ActivityLog.FindByEntity(ctx, "po", po.ID, 10)
	if len(logs) != 1 {
		t.Fatalf("expected 1 quotation_added row, got %d", len(logs))
	}
	if logs[0].Action != entity.ActionQuotationAdded {
		t.Fatalf("action = %s, want quotation_added", logs[0].Action)
	}
}

// TestSetSelectionStatus tests the selection sub-process update
func TestSetSelectionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	po := seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.QuotationSelectionRequired = true
		po.QuotationSelectionStatus = entity.SelectionPendingQuotations
	})

	if err := repos.PO.SetSelectionStatus(ctx, po.ID, entity.SelectionPendingSelection); err != nil {
		t.Fatalf("SetSelectionStatus failed: %v", err)
	}

	reloaded, _ := repos.PO.FindByID(ctx, po.ID)
	if reloaded.QuotationSelectionStatus != entity.SelectionPendingSelection {
		t.Fatalf("selection status = %s", reloaded.QuotationSelectionStatus)
	}
	// Main status untouched
	if reloaded.Status != entity.StatusDraft {
		t.Fatalf("selection update must not touch status, got %s", reloaded.Status)
	}

	if err := repos.PO.SetSelectionStatus(ctx, "no-such-id", entity.SelectionSelected); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestFindAllFilters tests list filtering and pagination
func TestFindAllFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.POType = entity.POTypeSpecialOrder
		po.Supplier = "Aceros del Norte"
	})
	seedOrder(t, repos.PO, nil)
	seedOrder(t, repos.PO, func(po *entity.PurchaseOrder) {
		po.Status = entity.StatusPendingApproval
	})

	items, total, err := repos.PO.FindAll(ctx, 1, 20, map[string]string{"po_type": entity.POTypeSpecialOrder})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("po_type filter: total=%d len=%d", total, len(items))
	}

	_, total, err = repos.PO.FindAll(ctx, 1, 20, map[string]string{"status": entity.StatusDraft})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("status filter: total=%d, want 2", total)
	}

	_, total, err = repos.PO.FindAll(ctx, 1, 20, map[string]string{"search": "aceros"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("search filter: total=%d, want 1", total)
	}

	items, total, err = repos.PO.FindAll(ctx, 2, 2, nil)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Fatalf("pagination: total=%d len=%d", total, len(items))
	}
}
