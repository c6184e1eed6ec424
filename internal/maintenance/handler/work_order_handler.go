package handler

import (
	"errors"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/entity"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/repository"
	pohandler "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/handler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkOrderHandler órdenes de trabajo y plantas (CRUD mínimo para anclar
// órdenes de compra)
type WorkOrderHandler struct {
	repo *repository.WorkOrderRepository
}

func NewWorkOrderHandler(repo *repository.WorkOrderRepository) *WorkOrderHandler {
	return &WorkOrderHandler{repo: repo}
}

// List GET /api/v1/work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	page, pageSize := pohandler.GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"plant_id": c.Query("plant_id"),
	}

	items, total, err := h.repo.FindAll(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		pohandler.InternalError(c, "Error al listar órdenes de trabajo: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	pohandler.Success(c, pohandler.ListResponse{
		Items: items,
		Pagination: &pohandler.Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			pohandler.NotFound(c, "La orden de trabajo no existe")
			return
		}
		pohandler.InternalError(c, err.Error())
		return
	}
	pohandler.Success(c, wo)
}

// CreateWorkOrderRequest alta de orden de trabajo
type CreateWorkOrderRequest struct {
	Code        string     `json:"code" binding:"required"`
	PlantID     *string    `json:"plant_id"`
	AssetCode   string     `json:"asset_code"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Create POST /api/v1/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pohandler.BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	wo := &entity.WorkOrder{
		ID:          uuid.New().String()[:32],
		Code:        req.Code,
		PlantID:     req.PlantID,
		AssetCode:   req.AssetCode,
		Description: req.Description,
		Priority:    priority,
		Status:      "open",
		DueDate:     req.DueDate,
		CreatedBy:   pohandler.GetUserID(c),
	}
	if err := h.repo.Create(c.Request.Context(), wo); err != nil {
		pohandler.InternalError(c, "Error al crear la orden de trabajo: "+err.Error())
		return
	}
	pohandler.Created(c, wo)
}

// ListPlants GET /api/v1/plants
func (h *WorkOrderHandler) ListPlants(c *gin.Context) {
	plants, err := h.repo.ListPlants(c.Request.Context())
	if err != nil {
		pohandler.InternalError(c, "Error al listar plantas: "+err.Error())
		return
	}
	pohandler.Success(c, plants)
}

// CreatePlantRequest alta de planta
type CreatePlantRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// CreatePlant POST /api/v1/plants
func (h *WorkOrderHandler) CreatePlant(c *gin.Context) {
	var req CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pohandler.BadRequest(c, "Cuerpo inválido: "+err.Error())
		return
	}

	plant := &entity.Plant{
		ID:       uuid.New().String()[:32],
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
		Status:   "active",
	}
	if err := h.repo.CreatePlant(c.Request.Context(), plant); err != nil {
		pohandler.InternalError(c, "Error al crear la planta: "+err.Error())
		return
	}
	pohandler.Created(c, plant)
}
