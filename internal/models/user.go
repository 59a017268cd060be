package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents an account in the system. Each user carries exactly one
// role and owns at most one role-specific profile.
type User struct {
	BaseModel
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role     Role   `gorm:"size:20;not null" json:"role"`

	// Relations (not always preloaded). Profiles are lifecycle-bound to
	// the user row and go away with it.
	AdminProfile   *AdminProfile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RefreshTokens  []RefreshToken  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
