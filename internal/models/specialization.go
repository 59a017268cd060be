package models

// Specialization represents a medical specialization doctors belong to.
// Deleting one is refused at the handler boundary while any doctor still
// references it.
type Specialization struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Doctors []DoctorProfile `gorm:"foreignKey:SpecializationID" json:"-"`
}
