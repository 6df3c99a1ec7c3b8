package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
)

// MsgBadAuthHeader is returned when an endpoint that requires a bearer token
// receives none.
const MsgBadAuthHeader = "Invalid authorization header format"

// Login godoc
// @ID          login
// @Summary     User login
// @Description Authenticates with username and password and returns a token pair.
// @Tags        Authentication
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  response.Envelope{data=handlers.LoginResponse}
// @Failure     400   {object}  response.Envelope  "Validation failed"
// @Failure     401   {object}  response.Envelope  "Invalid credentials, locked or inactive account"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetAuditActor(c, res.User.ID, res.User.Username)
	middleware.SetAuditEntity(c, res.User.ID)
	ok(c, http.StatusOK, "Login successful", toLoginResponse(res))
}

// Refresh godoc
// @ID          refreshToken
// @Summary     Refresh token
// @Description Issues a new token pair from a refresh token sent as the bearer credential.
// @Tags        Authentication
// @Produce     json
// @Param       Authorization  header    string  true  "Bearer <refresh token>"
// @Success     200            {object}  response.Envelope{data=handlers.LoginResponse}
// @Failure     400            {object}  response.Envelope  "Missing bearer token"
// @Failure     401            {object}  response.Envelope  "Invalid or expired refresh token"
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	tok, found := middleware.BearerToken(c)
	if !found {
		fail(c, apperr.BadRequest{Message: MsgBadAuthHeader})
		return
	}
	res, err := h.auth.Refresh(c.Request.Context(), tok)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Token refreshed successfully", toLoginResponse(res))
}

// Logout godoc
// @ID          logout
// @Summary     User logout
// @Description Records the sign-out. Tokens remain valid until they expire.
// @Tags        Authentication
// @Produce     json
// @Param       Authorization  header    string  false  "Bearer <access token>"
// @Success     200            {object}  response.Envelope
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if tok, found := middleware.BearerToken(c); found {
		h.auth.Logout(c.Request.Context(), tok)
	}
	done(c, "Logout successful")
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change password
// @Description Changes the current user's password.
// @Tags        Authentication
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ChangePasswordRequest  true  "Passwords"
// @Success     200   {object}  response.Envelope
// @Failure     400   {object}  response.Envelope  "Validation failed or wrong current password"
// @Failure     401   {object}  response.Envelope  "Authentication failed"
// @Router      /auth/change-password [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	uid, found := callerID(c)
	if !found {
		fail(c, apperr.AuthenticationFailed{})
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		fail(c, err)
		return
	}
	done(c, "Password changed successfully")
}

// ResetPassword godoc
// @ID          resetPassword
// @Summary     Reset user password
// @Description Sets a new password for a user and forces a change on next login.
// @Tags        Authentication
// @Produce     json
// @Security    BearerAuth
// @Param       userId       path      int     true  "User ID"
// @Param       newPassword  query     string  true  "New password"
// @Success     200          {object}  response.Envelope
// @Failure     400          {object}  response.Envelope  "Weak password"
// @Failure     403          {object}  response.Envelope  "Access denied"
// @Failure     404          {object}  response.Envelope  "User not found"
// @Router      /auth/reset-password/{userId} [post]
func (h *Handlers) ResetPassword(c *gin.Context) {
	uid, found := pathID(c, "userId")
	if !found {
		return
	}
	pw := c.Query("newPassword")
	if pw == "" {
		fail(c, apperr.Field("newPassword", "New password is required"))
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), uid, pw); err != nil {
		fail(c, err)
		return
	}
	done(c, "Password reset successfully")
}

// ValidateToken godoc
// @ID          validateToken
// @Summary     Validate token
// @Description Reports whether the bearer access token is valid.
// @Tags        Authentication
// @Produce     json
// @Param       Authorization  header    string  true  "Bearer <access token>"
// @Success     200            {object}  response.Envelope{data=bool}
// @Failure     400            {object}  response.Envelope  "Missing bearer token"
// @Router      /auth/validate [get]
func (h *Handlers) ValidateToken(c *gin.Context) {
	tok, found := middleware.BearerToken(c)
	if !found {
		fail(c, apperr.BadRequest{Message: MsgBadAuthHeader})
		return
	}
	ok(c, http.StatusOK, "Token validation result", h.auth.Validate(tok))
}
