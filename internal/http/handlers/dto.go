package handlers

import (
	"time"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/services"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Admin123"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,username" example:"jdoe"`
	Email     string `json:"email" binding:"omitempty,email,max=100" example:"jdoe@school.com"`
	Password  string `json:"password" binding:"required,min=8" example:"Secret123"`
	FirstName string `json:"firstName" binding:"required,max=100" example:"John"`
	LastName  string `json:"lastName" binding:"required,max=100" example:"Doe"`
	Phone     string `json:"phone" binding:"omitempty,phone" example:"+44 20 7946 0958"`
	Address   string `json:"address" binding:"max=500"`
	PhotoURL  string `json:"photoUrl"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Omitted fields are kept.
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=100"`
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	PhotoURL  *string `json:"photoUrl"`
}

// RoleRequest is the body of POST and PUT /roles.
type RoleRequest struct {
	RoleName    string `json:"roleName" binding:"required,max=50" example:"LIBRARIAN"`
	Description string `json:"description" binding:"max=500" example:"Manages the school library"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                 uint              `json:"id" example:"1"`
	Username           string            `json:"username" example:"jdoe"`
	Email              *string           `json:"email,omitempty" example:"jdoe@school.com"`
	FirstName          string            `json:"firstName" example:"John"`
	LastName           string            `json:"lastName" example:"Doe"`
	Phone              string            `json:"phone,omitempty"`
	Address            string            `json:"address,omitempty"`
	PhotoURL           string            `json:"photoUrl,omitempty"`
	Status             domain.UserStatus `json:"status" example:"ACTIVE"`
	LastLoginAt        *time.Time        `json:"lastLoginAt,omitempty"`
	MustChangePassword bool              `json:"mustChangePassword"`
	Roles              []string          `json:"roles"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func toUserResponse(u services.UserWithRoles) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		Address:            u.Address,
		PhotoURL:           u.PhotoURL,
		Status:             u.Status,
		LastLoginAt:        u.LastLoginAt,
		MustChangePassword: u.MustChangePassword,
		Roles:              roles,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// UserInfo is the user summary embedded in LoginResponse.
type UserInfo struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Email              *string    `json:"email,omitempty"`
	Roles              []string   `json:"roles"`
	MustChangePassword bool       `json:"mustChangePassword"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
}

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType" example:"Bearer"`
	ExpiresIn    int64    `json:"expiresIn" example:"86400"`
	User         UserInfo `json:"user"`
}

func toLoginResponse(r *services.LoginResult) LoginResponse {
	u := toUserResponse(r.User)
	return LoginResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    r.ExpiresIn,
		User: UserInfo{
			ID:                 u.ID,
			Username:           u.Username,
			FirstName:          u.FirstName,
			LastName:           u.LastName,
			Email:              u.Email,
			Roles:              u.Roles,
			MustChangePassword: u.MustChangePassword,
			LastLoginAt:        u.LastLoginAt,
		},
	}
}
