package service

import "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"

// WorkflowStage maps (status, type) to the stage label and the next-step
// recommendation shown in the UI. Pure presentation; no invariants live
// here.
func WorkflowStage(status, poType string) (label, recommendation string) {
	switch status {
	case entity.StatusDraft:
		if poType == entity.POTypeSpecialOrder {
			return "Borrador", "Registre las cotizaciones de los proveedores"
		}
		return "Borrador", "Complete la información y solicite aprobación"
	case entity.StatusQuoted:
		return "Cotizado", "Solicite la aprobación de la orden"
	case entity.StatusPendingApproval:
		return "Pendiente de aprobación", "En espera de autorización del responsable"
	case entity.StatusApproved:
		if poType == entity.POTypeSpecialOrder {
			return "Aprobada", "Realice el pedido con el proveedor seleccionado"
		}
		return "Aprobada", "Realice la compra con el proveedor"
	case entity.StatusPurchased:
		return "Comprada", "Cargue el comprobante de compra"
	case entity.StatusOrdered:
		return "Pedido realizado", "En espera de la entrega del proveedor"
	case entity.StatusReceived:
		return "Mercancía recibida", "Cargue el comprobante de recepción"
	case entity.StatusReceiptUploaded:
		return "Comprobante cargado", "En espera de validación financiera"
	case entity.StatusValidated:
		return "Validada", "Flujo concluido"
	default:
		return status, ""
	}
}
