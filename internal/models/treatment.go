package models

// Treatment is the clinical outcome attached to a completed appointment.
// It is created together with the status change and never edited or
// deleted afterwards.
type Treatment struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Diagnosis     string `gorm:"type:text;not null" json:"diagnosis"`
	Prescription  string `gorm:"type:text" json:"prescription,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
