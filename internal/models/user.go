package models

import (
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

type GenderType string

const (
	GenderMale   GenderType = "male"
	GenderFemale GenderType = "female"
	GenderOther  GenderType = "other"
)

// User covers both students and administrators; Role decides which.
// Gender is optional (nil when the student never filled it in).
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Phone        *string     `json:"phone,omitempty"`
	StudentCode  *string     `json:"student_code,omitempty"`
	Role         RoleType    `json:"role"`
	Gender       *GenderType `json:"gender,omitempty"`
	PasswordHash string      `json:"-"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
