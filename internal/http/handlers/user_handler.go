package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
	"github.com/tbourn/go-school-backend/internal/utils"
)

const msgUserCreated = "User created successfully"

func (h *Handlers) loadUser(ctx context.Context, id uint) (any, error) {
	u, err := h.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(*u), nil
}

func userPage(pg utils.Page[services.UserWithRoles]) response.PageResponse[UserResponse] {
	return response.PageFrom[UserResponse](utils.MapPage(pg, toUserResponse))
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create user
// @Description Creates an ACTIVE user. With an Idempotency-Key, retries return the user created first.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                        false  "Idempotency key"
// @Param       body             body      handlers.CreateUserRequest  true   "User"
// @Success     201              {object}  response.Envelope{data=handlers.UserResponse}
// @Failure     400              {object}  response.Envelope  "Validation failed or duplicate username/email"
// @Failure     401              {object}  response.Envelope  "Authentication failed"
// @Failure     403              {object}  response.Envelope  "Access denied"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	if h.replayCreated(c, msgUserCreated, h.loadUser) {
		return
	}
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Create(c.Request.Context(), services.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetAuditEntity(c, u.ID)
	h.rememberCreated(c, u.ID)
	ok(c, http.StatusCreated, msgUserCreated, toUserResponse(*u))
}

// GetUser godoc
// @ID          getUser
// @Summary     Get user by ID
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  response.Envelope{data=handlers.UserResponse}
// @Failure     404  {object}  response.Envelope  "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, toUserResponse(*u))
}

// GetUserByUsername godoc
// @ID          getUserByUsername
// @Summary     Get user by username
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       username  path      string  true  "Username"
// @Success     200       {object}  response.Envelope{data=handlers.UserResponse}
// @Failure     404       {object}  response.Envelope  "User not found"
// @Router      /users/username/{username} [get]
func (h *Handlers) GetUserByUsername(c *gin.Context) {
	u, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, toUserResponse(*u))
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users (paginated)
// @Description Returns a page of users. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       page           query     int     false  "Page number (0-based)"  minimum(0) default(0)
// @Param       size           query     int     false  "Page size"              minimum(1) maximum(100) default(10)
// @Param       sortBy         query     string  false  "Sort field"             default(id)
// @Param       sortDir        query     string  false  "Sort direction"         Enums(asc, desc)
// @Param       If-None-Match  header    string  false  "Return 304 if ETag matches"
// @Success     200            {object}  response.Envelope{data=response.PageResponse[handlers.UserResponse]}
// @Header      200            {string}  ETag  "Weak ETag for current result"
// @Success     304            {string}  string  "Not Modified"
// @Failure     400            {object}  response.Envelope  "Invalid sort field"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	if h.notModified(c, "users", usersStats, rolesStats) {
		return
	}
	p, err := pageable(c)
	if err != nil {
		fail(c, err)
		return
	}
	pg, err := h.users.List(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, userPage(pg))
}

// ListUsersByStatus godoc
// @ID          listUsersByStatus
// @Summary     List users by status
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       status  path      string  true   "Status"  Enums(ACTIVE, INACTIVE, SUSPENDED, LOCKED)
// @Param       page    query     int     false  "Page number (0-based)"
// @Param       size    query     int     false  "Page size"
// @Success     200     {object}  response.Envelope{data=response.PageResponse[handlers.UserResponse]}
// @Failure     400     {object}  response.Envelope  "Unknown status"
// @Router      /users/status/{status} [get]
func (h *Handlers) ListUsersByStatus(c *gin.Context) {
	status, valid := domain.ParseUserStatus(c.Param("status"))
	if !valid {
		fail(c, apperr.BadRequestf("Invalid status: %s", c.Param("status")))
		return
	}
	p, err := pageable(c)
	if err != nil {
		fail(c, err)
		return
	}
	pg, err := h.users.ListByStatus(c.Request.Context(), status, p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, userPage(pg))
}

// ListUsersByRole godoc
// @ID          listUsersByRole
// @Summary     List active users holding a role
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       roleName  path      string  true   "Role name"
// @Param       page      query     int     false  "Page number (0-based)"
// @Param       size      query     int     false  "Page size"
// @Success     200       {object}  response.Envelope{data=response.PageResponse[handlers.UserResponse]}
// @Router      /users/role/{roleName} [get]
func (h *Handlers) ListUsersByRole(c *gin.Context) {
	p, err := pageable(c)
	if err != nil {
		fail(c, err)
		return
	}
	pg, err := h.users.ListByRole(c.Request.Context(), c.Param("roleName"), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, userPage(pg))
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update user
// @Description Partially updates a user's profile. Omitted fields are kept; an empty email clears it.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                           true  "User ID"
// @Param       body  body      handlers.UpdateUserRequest  true  "Changes"
// @Success     200   {object}  response.Envelope{data=handlers.UserResponse}
// @Failure     400   {object}  response.Envelope  "Validation failed or email taken"
// @Failure     404   {object}  response.Envelope  "User not found"
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, services.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "User updated successfully", toUserResponse(*u))
}

// UpdateUserStatus godoc
// @ID          updateUserStatus
// @Summary     Update user status
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id      path      int     true  "User ID"
// @Param       status  query     string  true  "New status"  Enums(ACTIVE, INACTIVE, SUSPENDED, LOCKED)
// @Success     200     {object}  response.Envelope
// @Failure     400     {object}  response.Envelope  "Unknown status"
// @Failure     404     {object}  response.Envelope  "User not found"
// @Router      /users/{id}/status [put]
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	status, valid := domain.ParseUserStatus(c.Query("status"))
	if !valid {
		fail(c, apperr.Field("status", "Status must be one of: ACTIVE, INACTIVE, SUSPENDED, LOCKED"))
		return
	}
	if err := h.users.UpdateStatus(c.Request.Context(), id, status); err != nil {
		fail(c, err)
		return
	}
	done(c, "User status updated successfully")
}

// AssignRole godoc
// @ID          assignRole
// @Summary     Assign role to user
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id        path      int     true  "User ID"
// @Param       roleName  path      string  true  "Role name"
// @Success     200       {object}  response.Envelope
// @Failure     400       {object}  response.Envelope  "Role already assigned"
// @Failure     404       {object}  response.Envelope  "User or role not found"
// @Router      /users/{id}/roles/{roleName} [post]
func (h *Handlers) AssignRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var by *uint
	if uid, authed := callerID(c); authed {
		by = &uid
	}
	if err := h.users.AssignRole(c.Request.Context(), id, c.Param("roleName"), by); err != nil {
		fail(c, err)
		return
	}
	done(c, "Role assigned successfully")
}

// RemoveRole godoc
// @ID          removeRole
// @Summary     Remove role from user
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id        path      int     true  "User ID"
// @Param       roleName  path      string  true  "Role name"
// @Success     200       {object}  response.Envelope
// @Failure     400       {object}  response.Envelope  "Role not assigned"
// @Failure     404       {object}  response.Envelope  "User or role not found"
// @Router      /users/{id}/roles/{roleName} [delete]
func (h *Handlers) RemoveRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	if err := h.users.RemoveRole(c.Request.Context(), id, c.Param("roleName")); err != nil {
		fail(c, err)
		return
	}
	done(c, "Role removed successfully")
}

// GetUserRoles godoc
// @ID          getUserRoles
// @Summary     List a user's role names
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "User ID"
// @Success     200  {object}  response.Envelope{data=[]string}
// @Failure     404  {object}  response.Envelope  "User not found"
// @Router      /users/{id}/roles [get]
func (h *Handlers) GetUserRoles(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	roles, err := h.users.Roles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, roles)
}
