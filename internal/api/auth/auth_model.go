package auth

import (
	"net/mail"

	"github.com/taskvault/backend/internal/api"
)

const minPasswordLength = 6

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (req *RegisterRequest) Validate() api.ValidationErrors {
	var errs api.ValidationErrors
	if req.Username == "" {
		errs = append(errs, api.FieldError{Field: "username", Message: "is required"})
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, api.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if req.Email == "" {
		errs = append(errs, api.FieldError{Field: "email", Message: "is required"})
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, api.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	return errs
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() api.ValidationErrors {
	var errs api.ValidationErrors
	if req.Username == "" {
		errs = append(errs, api.FieldError{Field: "username", Message: "is required"})
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, api.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	return errs
}

// LoginResponse represents the login response body
type LoginResponse struct {
	Token string `json:"token"`
}
