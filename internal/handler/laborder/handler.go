package laborder

import (
	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/service/laborder"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

type Handler struct {
	service laborder.LabOrderService
}

func NewHandler(service laborder.LabOrderService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/lab-orders")
	{
		orders.POST("", h.CreateLabOrder)
		orders.GET("", h.ListLabOrders)
		orders.GET("/:id", h.GetLabOrder)
		orders.PATCH("/:id", h.UpdateLabOrder)
		orders.DELETE("/:id", h.DeleteLabOrder)
	}
}

func (h *Handler) CreateLabOrder(c *gin.Context) {
	var req model.CreateLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListLabOrders(c *gin.Context) {
	var filters model.LabOrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	orders, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, orders, filters.Page, filters.Limit, int(total))
}

func (h *Handler) GetLabOrder(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed lab order id", nil))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

// UpdateLabOrder applies scalar changes and, through the op field, the
// replace/append/patch-by-index/delete-by-index products operations.
func (h *Handler) UpdateLabOrder(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed lab order id", nil))
		return
	}

	var req model.UpdateLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteLabOrder(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed lab order id", nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
