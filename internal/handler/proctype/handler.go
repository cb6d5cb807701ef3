package proctype

import (
	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/service/proctype"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

type Handler struct {
	service proctype.ProcedureTypeService
}

func NewHandler(service proctype.ProcedureTypeService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	types := r.Group("/procedure-types")
	{
		types.POST("", h.CreateProcedureType)
		types.GET("", h.ListProcedureTypes)
		types.GET("/:id", h.GetProcedureType)
		types.PATCH("/:id", h.UpdateProcedureType)
		types.DELETE("/:id", h.DeleteProcedureType)
	}
}

func (h *Handler) CreateProcedureType(c *gin.Context) {
	var req model.CreateProcedureTypeRequest
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

func (h *Handler) ListProcedureTypes(c *gin.Context) {
	var filters model.ProcedureTypeFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	types, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, types, filters.Page, filters.Limit, int(total))
}

func (h *Handler) GetProcedureType(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed procedure type id", nil))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateProcedureType(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed procedure type id", nil))
		return
	}

	var req model.UpdateProcedureTypeRequest
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

// DeleteProcedureType refuses deletion while appointments still reference the
// type by name, unless force=1 overrides the check.
func (h *Handler) DeleteProcedureType(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed procedure type id", nil))
		return
	}

	force := c.Query("force") == "1"
	if err := h.service.Delete(c.Request.Context(), id, force); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
