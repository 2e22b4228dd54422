package domain

import "time"

type User struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Email       string    `json:"email,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Session is the authenticated state of one browser. Token and Role are mirrored into the
// auth-token / user-role cookies; User is the cached record when available.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
	User  *User  `json:"user,omitempty"`
}

// Credentials accepts either an email or a phone number as identifier.
type Credentials struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Password    string `json:"password" validate:"required"`
}

type Registration struct {
	FullName    string    `json:"fullName" validate:"required,person_name"`
	Email       string    `json:"email" validate:"required,email"`
	PhoneNumber string    `json:"phoneNumber" validate:"required,phone"`
	Password    string    `json:"password" validate:"required,password_strength"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Role        Role      `json:"role,omitempty"`
}

type OTPVerification struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Code        string `json:"code" validate:"required,otp"`
}
