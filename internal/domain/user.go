package domain

import (
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	PasswordHash      string     `json:"-"`
	IsAdmin           bool       `json:"is_admin"`
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ProfilePatch is what reaches storage: the password, if changed, has
// already been hashed by the service.
type ProfilePatch struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
}

// UserWithNextBooking decorates a user with the start date of their next
// reservation, used by the admin overview.
type UserWithNextBooking struct {
	User
	NextBooking *string `json:"next_booking"`
}

const MinPasswordLen = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return Validationf("name is required")
	}
	if r.Email == "" {
		return Validationf("email is required")
	}
	if !IsValidEmail(r.Email) {
		return Validationf("invalid email format")
	}
	if len(r.Password) < MinPasswordLen {
		return Validationf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || !IsValidEmail(r.Email) {
		return Validationf("valid email is required")
	}
	if r.Password == "" {
		return Validationf("password is required")
	}
	return nil
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &e
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return Validationf("name cannot be empty")
	}
	if r.Email != nil && !IsValidEmail(*r.Email) {
		return Validationf("invalid email format")
	}
	if r.Password != nil && len(*r.Password) < MinPasswordLen {
		return Validationf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}
