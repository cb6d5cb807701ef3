package appointment

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/service/appointment"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

type Handler struct {
	service appointment.AppointmentService
}

func NewHandler(service appointment.AppointmentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appts := r.Group("/appointments")
	{
		appts.POST("", h.CreateAppointment)
		appts.GET("", h.ListAppointments)
		appts.GET("/:id", h.GetAppointment)
		appts.PATCH("/:id", h.UpdateAppointment)
		appts.DELETE("/:id", h.DeleteAppointment)

		appts.POST("/:id/line-items", h.AppendLineItems)
		appts.PATCH("/:id/line-items/:index", h.PatchLineItem)
		appts.DELETE("/:id/line-items/:index", h.DeleteLineItem)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
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

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	appts, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appts, filters.Page, filters.Limit, int(total))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}

	var req model.UpdateAppointmentRequest
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

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}

	soft := c.DefaultQuery("soft", "false") == "true"
	if err := h.service.Delete(c.Request.Context(), id, soft); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true, "soft": soft})
}

func (h *Handler) AppendLineItems(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}

	var req struct {
		LineItems []model.LineItem `json:"line_items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.AppendLineItems(c.Request.Context(), id, req.LineItems)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) PatchLineItem(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed index", err))
		return
	}

	var patch model.LineItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.PatchLineItem(c.Request.Context(), id, index, &patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteLineItem(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed appointment id", nil))
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed index", err))
		return
	}

	updated, svcErr := h.service.DeleteLineItem(c.Request.Context(), id, index)
	if svcErr != nil {
		httputil.RespondWithError(c, svcErr)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}
