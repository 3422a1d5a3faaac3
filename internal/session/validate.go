package session

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report on 'json' tag instead of struct field name
	// Look at documentation of 'RegisterTagNameFunc' for more details
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		// skip if tag key says it should be ignored
		if name == "-" {
			return ""
		}
		return name
	})
}

// Form rules mirror what the web forms enforced. Checked before any
// network call so bad input never reaches the backend.
type registerForm struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginForm struct {
	Nickname string `json:"nickname" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type emailForm struct {
	Email string `json:"email" validate:"required,email"`
}

type captchaLoginForm struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func validateForm(form any) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
