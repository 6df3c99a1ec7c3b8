package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

const msgRoleCreated = "Role created successfully"

func (h *Handlers) loadRole(ctx context.Context, id uint) (any, error) {
	return h.roles.Get(ctx, id)
}

// CreateRole godoc
// @ID          createRole
// @Summary     Create role
// @Description Creates an active role; the name is normalized to upper snake case.
// @Tags        Roles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                 false  "Idempotency key"
// @Param       body             body      handlers.RoleRequest  true   "Role"
// @Success     201              {object}  response.Envelope{data=domain.Role}
// @Failure     400              {object}  response.Envelope  "Validation failed or duplicate name"
// @Failure     403              {object}  response.Envelope  "Access denied"
// @Router      /roles [post]
func (h *Handlers) CreateRole(c *gin.Context) {
	if h.replayCreated(c, msgRoleCreated, h.loadRole) {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.roles.Create(c.Request.Context(), services.RoleInput{RoleName: req.RoleName, Description: req.Description})
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetAuditEntity(c, r.ID)
	h.rememberCreated(c, r.ID)
	ok(c, http.StatusCreated, msgRoleCreated, r)
}

// GetRole godoc
// @ID          getRole
// @Summary     Get role by ID
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Role ID"
// @Success     200  {object}  response.Envelope{data=domain.Role}
// @Failure     404  {object}  response.Envelope  "Role not found"
// @Router      /roles/{id} [get]
func (h *Handlers) GetRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	r, err := h.roles.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, r)
}

// GetRoleByName godoc
// @ID          getRoleByName
// @Summary     Get role by name
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       roleName  path      string  true  "Role name"
// @Success     200       {object}  response.Envelope{data=domain.Role}
// @Failure     404       {object}  response.Envelope  "Role not found"
// @Router      /roles/name/{roleName} [get]
func (h *Handlers) GetRoleByName(c *gin.Context) {
	r, err := h.roles.GetByName(c.Request.Context(), c.Param("roleName"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, r)
}

// ListRoles godoc
// @ID          listRoles
// @Summary     List roles (paginated)
// @Description Returns a page of roles. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       page           query     int     false  "Page number (0-based)"  minimum(0) default(0)
// @Param       size           query     int     false  "Page size"              minimum(1) maximum(100) default(10)
// @Param       sortBy         query     string  false  "Sort field"             default(id)
// @Param       sortDir        query     string  false  "Sort direction"         Enums(asc, desc)
// @Param       If-None-Match  header    string  false  "Return 304 if ETag matches"
// @Success     200            {object}  response.Envelope{data=response.PageResponse[domain.Role]}
// @Success     304            {string}  string  "Not Modified"
// @Router      /roles [get]
func (h *Handlers) ListRoles(c *gin.Context) {
	if h.notModified(c, "roles", rolesStats) {
		return
	}
	p, err := pageable(c)
	if err != nil {
		fail(c, err)
		return
	}
	pg, err := h.roles.List(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, response.PageFrom[domain.Role](pg))
}

// ListActiveRoles godoc
// @ID          listActiveRoles
// @Summary     List active roles
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  response.Envelope{data=[]domain.Role}
// @Router      /roles/active [get]
func (h *Handlers) ListActiveRoles(c *gin.Context) {
	roles, err := h.roles.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	ok(c, http.StatusOK, MsgSuccess, roles)
}

// UpdateRole godoc
// @ID          updateRole
// @Summary     Update role
// @Tags        Roles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                    true  "Role ID"
// @Param       body  body      handlers.RoleRequest  true  "Role"
// @Success     200   {object}  response.Envelope{data=domain.Role}
// @Failure     400   {object}  response.Envelope  "Validation failed or duplicate name"
// @Failure     404   {object}  response.Envelope  "Role not found"
// @Router      /roles/{id} [put]
func (h *Handlers) UpdateRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.roles.Update(c.Request.Context(), id, services.RoleInput{RoleName: req.RoleName, Description: req.Description})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Role updated successfully", r)
}

// ActivateRole godoc
// @ID          activateRole
// @Summary     Activate role
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Role ID"
// @Success     200  {object}  response.Envelope
// @Failure     404  {object}  response.Envelope  "Role not found"
// @Router      /roles/{id}/activate [put]
func (h *Handlers) ActivateRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	if err := h.roles.Activate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	done(c, "Role activated successfully")
}

// DeactivateRole godoc
// @ID          deactivateRole
// @Summary     Deactivate role
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Role ID"
// @Success     200  {object}  response.Envelope
// @Failure     404  {object}  response.Envelope  "Role not found"
// @Router      /roles/{id}/deactivate [put]
func (h *Handlers) DeactivateRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	if err := h.roles.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	done(c, "Role deactivated successfully")
}

// DeleteRole godoc
// @ID          deleteRole
// @Summary     Delete role
// @Description Deletes a role that is not assigned to any user.
// @Tags        Roles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Role ID"
// @Success     200  {object}  response.Envelope
// @Failure     400  {object}  response.Envelope  "Role is assigned to users"
// @Failure     404  {object}  response.Envelope  "Role not found"
// @Router      /roles/{id} [delete]
func (h *Handlers) DeleteRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	if err := h.roles.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	done(c, "Role deleted successfully")
}
