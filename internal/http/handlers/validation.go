package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-school-backend/internal/apperr"
)

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	phoneRE    = regexp.MustCompile(`^[+]?[0-9\s\-()]{0,20}$`)
)

// Messages for custom validation tags.
var customMessages = map[string]string{
	"username": "%s can only contain letters, numbers, dots, hyphens and underscores",
	"phone":    "Invalid phone number format",
}

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRE.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})
}

// bindJSON decodes the body into dst and validates it. On failure it aborts
// with a BadRequest (malformed JSON) or ValidationFailed (field errors).
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fail(c, validationFailed(verrs))
		return false
	}
	fail(c, apperr.BadRequest{Message: "Malformed JSON request body"})
	return false
}

// validationFailed turns validator errors into per-field messages. The first
// failing rule of each field wins.
func validationFailed(verrs validator.ValidationErrors) apperr.ValidationFailed {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.ValidationFailed{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " should be valid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	if msg, ok := customMessages[fe.Tag()]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, label)
		}
		return msg
	}
	return label + " is invalid"
}

// fieldLabel turns a camelCase JSON name into a sentence-case label,
// e.g. "firstName" -> "First name".
func fieldLabel(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
