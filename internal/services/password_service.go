package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/config"
)

// bcrypt ignores input past this many bytes.
const maxPasswordBytes = 72

// PasswordService enforces the password policy and hashes passwords.
type PasswordService struct {
	Policy config.PasswordPolicy
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

// NewPasswordService returns a service enforcing policy.
func NewPasswordService(policy config.PasswordPolicy) *PasswordService {
	return &PasswordService{Policy: policy, Cost: bcrypt.DefaultCost}
}

// Validate reports the first policy rule pw breaks as a BadRequest.
func (s *PasswordService) Validate(pw string) error {
	p := s.Policy
	if len([]rune(pw)) < p.MinLength || strings.TrimSpace(pw) == "" {
		return apperr.BadRequestf("Password must be at least %d characters long", p.MinLength)
	}
	if len(pw) > maxPasswordBytes {
		return apperr.BadRequestf("Password must not exceed %d bytes", maxPasswordBytes)
	}

	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	switch {
	case p.RequireUpper && !upper:
		return apperr.BadRequest{Message: "Password must contain at least one uppercase letter"}
	case p.RequireLower && !lower:
		return apperr.BadRequest{Message: "Password must contain at least one lowercase letter"}
	case p.RequireDigit && !digit:
		return apperr.BadRequest{Message: "Password must contain at least one digit"}
	case p.RequireSpecial && !special:
		return apperr.BadRequest{Message: "Password must contain at least one special character"}
	}
	return nil
}

// Hash validates pw against the policy and returns its bcrypt hash.
func (s *PasswordService) Hash(pw string) (string, error) {
	if err := s.Validate(pw); err != nil {
		return "", err
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Matches reports whether raw hashes to hash.
func (s *PasswordService) Matches(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
