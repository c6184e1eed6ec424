package entity

import "fmt"

// ServiceQuoteThreshold is the amount at and above which a direct_service
// order requires a formal quotation.
//
// TODO: the web client still shows $10,000 in its explanatory copy for this
// rule; product has to confirm which figure is right before we touch either.
// Until then this constant is the single source of truth for the engine and
// the transition procedure alike.
const ServiceQuoteThreshold = 5000.0

// QuoteDecision is the outcome of the quote requirement evaluation.
type QuoteDecision struct {
	RequiresQuote   bool     `json:"requires_quote"`
	Reason          string   `json:"reason"`
	Recommendation  string   `json:"recommendation"`
	ThresholdAmount *float64 `json:"threshold_amount,omitempty"`
}

// EvaluateQuoteRequirement decides whether an order of the given type and
// amount needs a quotation. Pure function; both the service layer and the
// transition procedure call it, so the client's advisory flag and the
// store's authoritative re-derivation can never disagree.
func EvaluateQuoteRequirement(poType string, amount float64, purpose string) QuoteDecision {
	switch poType {
	case POTypeDirectPurchase:
		return QuoteDecision{
			RequiresQuote:  false,
			Reason:         "Las compras directas no requieren cotización formal",
			Recommendation: "Conserve el comprobante de compra para la validación final",
		}
	case POTypeDirectService:
		threshold := ServiceQuoteThreshold
		if amount >= ServiceQuoteThreshold {
			return QuoteDecision{
				RequiresQuote:   true,
				Reason:          fmt.Sprintf("Los servicios de $%.2f o más requieren cotización", ServiceQuoteThreshold),
				Recommendation:  "Solicite al menos dos cotizaciones de proveedores de servicio",
				ThresholdAmount: &threshold,
			}
		}
		return QuoteDecision{
			RequiresQuote:   false,
			Reason:          fmt.Sprintf("El monto es menor al umbral de $%.2f para servicios", ServiceQuoteThreshold),
			Recommendation:  "Puede proceder directamente a solicitar aprobación",
			ThresholdAmount: &threshold,
		}
	case POTypeSpecialOrder:
		return QuoteDecision{
			RequiresQuote:  true,
			Reason:         "Los pedidos especiales siempre requieren cotización del proveedor",
			Recommendation: "Registre las cotizaciones recibidas y seleccione un proveedor",
		}
	default:
		// Unknown types fall back to requiring a quote; the creation
		// validator rejects them before an order can exist anyway.
		return QuoteDecision{
			RequiresQuote:  true,
			Reason:         fmt.Sprintf("Tipo de orden desconocido: %s", poType),
			Recommendation: "Verifique el tipo de orden",
		}
	}
}
