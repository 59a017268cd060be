package models

import (
	"fmt"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "Booked"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment represents a booked visit between a patient and a doctor.
// Date is YYYY-MM-DD and Time is HH:MM.
//
// SlotKey is set to "doctorID|date|time" while the appointment is Booked
// and cleared on cancel/complete. Its unique index makes the store itself
// reject a second Booked appointment for the same slot, so the
// no-double-booking invariant holds even if two requests race past the
// application-level conflict check.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index" json:"doctorId"`
	Date      string            `gorm:"size:10;not null" json:"date"`
	Time      string            `gorm:"size:5;not null" json:"time"`
	Reason    string            `gorm:"type:text" json:"reason,omitempty"`
	Status    AppointmentStatus `gorm:"size:20;default:'Booked'" json:"status"`
	SlotKey   *string           `gorm:"uniqueIndex;size:60" json:"-"`

	Patient   PatientProfile `gorm:"foreignKey:PatientID" json:"-"`
	Doctor    DoctorProfile  `gorm:"foreignKey:DoctorID" json:"-"`
	Treatment *Treatment     `gorm:"foreignKey:AppointmentID" json:"treatment,omitempty"`
}

// SlotKeyFor builds the unique key for a (doctor, date, time) slot.
func SlotKeyFor(doctorID, date, timeOfDay string) string {
	return fmt.Sprintf("%s|%s|%s", doctorID, date, timeOfDay)
}
