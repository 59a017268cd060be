package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when a user has no profile for the
// requested role.
var ErrProfileNotFound = errors.New("profile not found for user")

// AdminProfile holds the descriptive record for an admin account.
type AdminProfile struct {
	BaseModel
	UserID string `gorm:"size:36;index;not null" json:"userId"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Phone  string `gorm:"size:20" json:"phone,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// DoctorProfile holds the descriptive record for a doctor account.
type DoctorProfile struct {
	BaseModel
	UserID           string `gorm:"size:36;index;not null" json:"userId"`
	Name             string `gorm:"size:100;not null" json:"name"`
	SpecializationID string `gorm:"size:36;index;not null" json:"specializationId"`
	Phone            string `gorm:"size:20" json:"phone,omitempty"`
	Bio              string `gorm:"type:text" json:"bio,omitempty"`
	ExperienceYears  int    `gorm:"default:0" json:"experienceYears"`
	IsActive         bool   `gorm:"default:true" json:"isActive"`

	User           User           `gorm:"foreignKey:UserID" json:"-"`
	Specialization Specialization `gorm:"foreignKey:SpecializationID" json:"specialization,omitempty"`
}

// PatientProfile holds the descriptive record for a patient account.
type PatientProfile struct {
	BaseModel
	UserID         string `gorm:"size:36;index;not null" json:"userId"`
	Name           string `gorm:"size:100;not null" json:"name"`
	Phone          string `gorm:"size:20" json:"phone,omitempty"`
	DateOfBirth    string `gorm:"size:10" json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Address        string `gorm:"type:text" json:"address,omitempty"`
	MedicalHistory string `gorm:"type:text" json:"medicalHistory,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// DoctorProfileForUser resolves the doctor profile owned by a user id.
// Core operations take profile ids, so handlers use these lookups instead
// of traversing relations.
func DoctorProfileForUser(db *gorm.DB, userID string) (*DoctorProfile, error) {
	var profile DoctorProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// PatientProfileForUser resolves the patient profile owned by a user id.
func PatientProfileForUser(db *gorm.DB, userID string) (*PatientProfile, error) {
	var profile PatientProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
