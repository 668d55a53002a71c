package models

import (
	"time"
)

// User represents a registered user.
type User struct {
	Base              `bson:",inline"`
	FullName          string    `bson:"full_name" json:"full_name"`
	Email             string    `bson:"email" json:"email"`
	PhoneNumber       string    `bson:"phone_number" json:"phone_number"`
	PasswordHash      string    `bson:"password" json:"-"` // Store hash, not plaintext
	ProfilePictureURL string    `bson:"profile_picture_url" json:"profile_picture_url"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// UserPatch carries optional profile changes. Nil fields are left untouched.
type UserPatch struct {
	FullName          *string `json:"full_name"`
	Email             *string `json:"email" binding:"omitempty,email"`
	PhoneNumber       *string `json:"phone_number"`
	Password          *string `json:"password" binding:"omitempty,min=1"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// RegisterInput is the registration payload. Password presence is checked by
// the user service so the boundary can report it as a plain 400.
type RegisterInput struct {
	FullName          string `json:"full_name"`
	Email             string `json:"email" validate:"required,email"`
	PhoneNumber       string `json:"phone_number"`
	Password          string `json:"password"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
