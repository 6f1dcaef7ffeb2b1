package flows

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrEthical07/authcore/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("field"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateInput checks the validate tags of an input struct and reports the
// first failure as a *model.ValidationError.
func ValidateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &model.ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return &model.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "printascii":
		return "must contain printable ASCII only"
	default:
		return "is invalid"
	}
}

type RegisterInput struct {
	Username string `field:"username" validate:"required,max=64,printascii"`
	Password string `field:"password" validate:"required"`
	Email    string `field:"email" validate:"required,max=254,email"`
}

type LoginInput struct {
	Username string `field:"username" validate:"required"`
	Password string `field:"password" validate:"required"`
}

type ChangePasswordInput struct {
	AccountID       string `field:"account_id" validate:"required"`
	CurrentPassword string `field:"current_password" validate:"required"`
	NewPassword     string `field:"new_password" validate:"required"`
}

type UpdateEmailInput struct {
	AccountID string `field:"account_id" validate:"required"`
	Email     string `field:"email" validate:"required,max=254,email"`
}

type ForgotPasswordInput struct {
	Username string `field:"username" validate:"required"`
}

type ResetPasswordInput struct {
	Token       string `field:"token" validate:"required,max=512"`
	NewPassword string `field:"new_password" validate:"required"`
}

type SetRoleInput struct {
	PrincipalID string `field:"principal" validate:"required"`
	AccountID   string `field:"user_id" validate:"required"`
	Role        string `field:"role" validate:"required,oneof=user admin"`
}

type UnlockInput struct {
	PrincipalID string `field:"principal" validate:"required"`
	Username    string `field:"username" validate:"required"`
}
