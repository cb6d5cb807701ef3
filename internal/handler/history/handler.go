package history

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/service/history"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

type Handler struct {
	service history.HistoryService
}

func NewHandler(service history.HistoryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	histories := r.Group("/clinical-histories")
	{
		histories.POST("", h.CreateHistory)
		histories.GET("", h.ListHistories)
		histories.GET("/:patient_id", h.GetHistory)
		histories.PATCH("/:patient_id", h.UpdateHistory)
		histories.DELETE("/:patient_id", h.DeleteHistory)

		histories.POST("/:patient_id/procedures", h.AppendProcedures)
		histories.PATCH("/:patient_id/procedures/:index", h.PatchProcedure)
		histories.DELETE("/:patient_id/procedures/:index", h.DeleteProcedure)
	}
}

func (h *Handler) CreateHistory(c *gin.Context) {
	var req model.CreateHistoryRequest
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

func (h *Handler) ListHistories(c *gin.Context) {
	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	histories, total, err := h.service.List(c.Request.Context(), &p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, histories, p.Page, p.Limit, int(total))
}

func (h *Handler) GetHistory(c *gin.Context) {
	found, err := h.service.GetByPatient(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateHistory(c *gin.Context) {
	var req model.UpdateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("patient_id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("patient_id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) AppendProcedures(c *gin.Context) {
	var req struct {
		Procedures []model.ProcedureEntry `json:"procedures" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.AppendProcedures(c.Request.Context(), c.Param("patient_id"), req.Procedures)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) PatchProcedure(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed index", err))
		return
	}

	var patch model.ProcedurePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, svcErr := h.service.PatchProcedure(c.Request.Context(), c.Param("patient_id"), index, &patch)
	if svcErr != nil {
		httputil.RespondWithError(c, svcErr)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteProcedure(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed index", err))
		return
	}

	updated, svcErr := h.service.DeleteProcedure(c.Request.Context(), c.Param("patient_id"), index)
	if svcErr != nil {
		httputil.RespondWithError(c, svcErr)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}
