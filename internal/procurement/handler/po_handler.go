package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/repository"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/service"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// POHandler órdenes de compra
type POHandler struct {
	svc     *service.OrderService
	logRepo *repository.ActivityLogRepository
}

func NewPOHandler(svc *service.OrderService, logRepo *repository.ActivityLogRepository) *POHandler {
	return &POHandler{svc: svc, logRepo: logRepo}
}

// ListOrders lista de órdenes
// GET /api/v1/purchase-orders?status=&po_type=&po_purpose=&work_order_id=&plant_id=&search=
func (h *POHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":        c.Query("status"),
		"po_type":       c.Query("po_type"),
		"po_purpose":    c.Query("po_purpose"),
		"work_order_id": c.Query("work_order_id"),
		"plant_id":      c.Query("plant_id"),
		"search":        c.Query("search"),
	}

	items, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Error al listar órdenes: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// GetOrder detalle de orden
// GET /api/v1/purchase-orders/:id
func (h *POHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	po, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "La orden de compra no existe")
			return
		}
		InternalError(c, "Error al consultar la orden: "+err.Error())
		return
	}
	Success(c, po)
}

// ValidateCreate runs the creation validator without persisting anything.
// POST /api/v1/purchase-orders/validate
func (h *POHandler) ValidateCreate(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}
	Success(c, service.ValidateCreateRequest(&req))
}

// CreateOrder crea una orden tipificada
// POST /api/v1/purchase-orders
func (h *POHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	// Validation errors go back as a batch so the client can show all of
	// them at once.
	if result := service.ValidateCreateRequest(&req); !result.IsValid {
		c.JSON(400, Response{Code: 40000, Message: "Solicitud inválida", Data: result})
		return
	}

	actorID := GetUserID(c)
	po, err := h.svc.CreateTypedPurchaseOrder(c.Request.Context(), &req, actorID)
	if err != nil {
		InternalError(c, "Error al crear la orden: "+err.Error())
		return
	}

	Created(c, po)
}

// QuoteRequirement evalúa si una orden requiere cotización
// GET /api/v1/purchase-orders/quote-requirement?po_type=&amount=&po_purpose=
func (h *POHandler) QuoteRequirement(c *gin.Context) {
	poType := c.Query("po_type")
	if poType == "" {
		BadRequest(c, "po_type es obligatorio")
		return
	}
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		BadRequest(c, "amount inválido")
		return
	}

	Success(c, h.svc.ValidateQuoteRequirement(poType, amount, c.Query("po_purpose")))
}

// ListActivity bitácora de la orden
// GET /api/v1/purchase-orders/:id/activity
func (h *POHandler) ListActivity(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, err := h.logRepo.FindByEntity(c.Request.Context(), "po", id, limit)
	if err != nil {
		InternalError(c, "Error al consultar la bitácora: "+err.Error())
		return
	}
	Success(c, rows)
}

// ExportOrders exporta el listado filtrado a xlsx
// GET /api/v1/purchase-orders/export
func (h *POHandler) ExportOrders(c *gin.Context) {
	filters := map[string]string{
		"status":     c.Query("status"),
		"po_type":    c.Query("po_type"),
		"po_purpose": c.Query("po_purpose"),
	}

	items, _, err := h.svc.ListOrders(c.Request.Context(), 1, 100, filters)
	if err != nil {
		InternalError(c, "Error al exportar órdenes: "+err.Error())
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Órdenes"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"Folio", "Tipo", "Propósito", "Estatus", "Proveedor", "Monto", "Forma de pago", "Creada"}
	for i, head := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, head)
	}

	for row, po := range items {
		values := []interface{}{
			po.OrderID, po.POType, po.POPurpose, po.Status,
			po.Supplier, po.TotalAmount, po.PaymentMethod,
			po.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ordenes-%s.xlsx", c.Query("status")))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "Error al generar el archivo: "+err.Error())
	}
}
