package role

import (
	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/service/role"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
	"github.com/odontosys/clinic-api/pkg/httputil"
)

type Handler struct {
	service role.RoleService
}

func NewHandler(service role.RoleService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles")
	{
		roles.POST("", h.CreateRole)
		roles.GET("", h.ListRoles)
		roles.GET("/catalog", h.GetCatalog)
		roles.GET("/:id", h.GetRole)
		roles.PATCH("/:id", h.UpdateRole)
		roles.DELETE("/:id", h.DeleteRole)
	}
}

func (h *Handler) CreateRole(c *gin.Context) {
	var req model.CreateRoleRequest
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

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, roles)
}

// GetCatalog returns the fixed set of role names the system recognizes.
func (h *Handler) GetCatalog(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Catalog())
}

func (h *Handler) GetRole(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed role id", nil))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed role id", nil))
		return
	}

	var req model.UpdateRoleRequest
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

func (h *Handler) DeleteRole(c *gin.Context) {
	id, ok := model.ParseObjectID(c.Param("id"))
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("malformed role id", nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
