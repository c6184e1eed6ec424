package entity

import "testing"

// TestQuoteRequirementByType tests the quote requirement per order type
func TestQuoteRequirementByType(t *testing.T) {
	tests := []struct {
		name     string
		poType   string
		amount   float64
		requires bool
	}{
		{"direct purchase small", POTypeDirectPurchase, 100, false},
		{"direct purchase large", POTypeDirectPurchase, 1000000, false},
		{"direct service below threshold", POTypeDirectService, 4999.99, false},
		{"direct service at threshold", POTypeDirectService, 5000, true},
		{"direct service above threshold", POTypeDirectService, 5000.01, true},
		{"direct service minimal amount", POTypeDirectService, 0.01, false},
		{"direct service large", POTypeDirectService, 1000000, true},
		{"special order minimal amount", POTypeSpecialOrder, 0.01, true},
		{"special order large", POTypeSpecialOrder, 1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateQuoteRequirement(tt.poType, tt.amount, PurposeWorkOrderCash)
			if d.RequiresQuote != tt.requires {
				t.Fatalf("requires_quote = %v, want %v", d.RequiresQuote, tt.requires)
			}
			if d.Reason == "" {
				t.Fatal("expected a non-empty reason")
			}
			if d.Recommendation == "" {
				t.Fatal("expected a non-empty recommendation")
			}
		})
	}
}

// TestQuoteRequirementThresholdExposed tests that service decisions carry the threshold
func TestQuoteRequirementThresholdExposed(t *testing.T) {
	d := EvaluateQuoteRequirement(POTypeDirectService, 3000, PurposeWorkOrderCash)
	if d.ThresholdAmount == nil {
		t.Fatal("expected threshold_amount on a direct_service decision")
	}
	if *d.ThresholdAmount != ServiceQuoteThreshold {
		t.Fatalf("threshold_amount = %v, want %v", *d.ThresholdAmount, ServiceQuoteThreshold)
	}

	d2 := EvaluateQuoteRequirement(POTypeDirectPurchase, 3000, PurposeWorkOrderCash)
	if d2.ThresholdAmount != nil {
		t.Fatal("direct_purchase decisions carry no threshold")
	}
}

// TestQuoteRequirementUnknownType tests the conservative fallback
func TestQuoteRequirementUnknownType(t *testing.T) {
	d := EvaluateQuoteRequirement("made_up_type", 50, PurposeInventoryRestock)
	if !d.RequiresQuote {
		t.Fatal("unknown types must fall back to requiring a quote")
	}
}
