package auth

import (
	"github.com/frahmantamala/hr-portal/internal/core/common/validation"
	"github.com/frahmantamala/hr-portal/internal/core/user"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("username", r.Username).Required().Length(3, 20)
	v.Field("email", r.Email).Required().Email().MaxLength(100)
	v.Field("password", r.Password).Required().Length(6, 50)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("email", r.Email).Required().Email()
	v.Field("password", r.Password).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// LoginResponse is the body of a successful POST /users/login.
type LoginResponse struct {
	AccessToken string     `json:"accessToken"`
	User        *user.User `json:"user"`
}
