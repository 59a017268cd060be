package models

// AvailabilityWindow is one open time window a doctor has declared within
// the rolling booking horizon. Dates are stored as YYYY-MM-DD and times as
// HH:MM so lexicographic order matches chronological order.
type AvailabilityWindow struct {
	BaseModel
	DoctorID    string `gorm:"size:36;index" json:"doctorId"`
	Date        string `gorm:"size:10;not null" json:"date"`
	StartTime   string `gorm:"size:5;not null" json:"startTime"`
	EndTime     string `gorm:"size:5;not null" json:"endTime"`
	IsAvailable bool   `gorm:"default:true" json:"isAvailable"`

	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"-"`
}
