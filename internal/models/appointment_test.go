package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAppointmentTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:testdb_appt_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = Migrate(db)
	assert.NoError(t, err)

	return db
}

func TestSlotKeyFor(t *testing.T) {
	key := SlotKeyFor("doc-1", "2026-09-16", "10:00")
	assert.Equal(t, "doc-1|2026-09-16|10:00", key)
}

func TestSlotKeyUniqueWhileBooked(t *testing.T) {
	db := setupAppointmentTestDB(t)

	key := SlotKeyFor("doc-1", "2026-09-16", "10:00")

	first := Appointment{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Date:      "2026-09-16",
		Time:      "10:00",
		Status:    StatusBooked,
		SlotKey:   &key,
	}
	assert.NoError(t, db.Create(&first).Error)

	dupKey := key
	second := Appointment{
		PatientID: "pat-2",
		DoctorID:  "doc-1",
		Date:      "2026-09-16",
		Time:      "10:00",
		Status:    StatusBooked,
		SlotKey:   &dupKey,
	}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSlotKeyNullAllowsTerminalRows(t *testing.T) {
	db := setupAppointmentTestDB(t)

	// Terminal appointments carry a NULL slot key, so any number of them
	// may share the same (doctor, date, time).
	for i := 0; i < 3; i++ {
		appt := Appointment{
			PatientID: fmt.Sprintf("pat-%d", i),
			DoctorID:  "doc-1",
			Date:      "2026-09-16",
			Time:      "10:00",
			Status:    StatusCancelled,
		}
		assert.NoError(t, db.Create(&appt).Error)
	}

	var count int64
	assert.NoError(t, db.Model(&Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ?", "doc-1", "2026-09-16", "10:00").
		Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestTreatmentOnePerAppointment(t *testing.T) {
	db := setupAppointmentTestDB(t)

	appt := Appointment{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Date:      "2026-09-16",
		Time:      "10:00",
		Status:    StatusCompleted,
	}
	assert.NoError(t, db.Create(&appt).Error)

	first := Treatment{AppointmentID: appt.ID, Diagnosis: "Flu"}
	assert.NoError(t, db.Create(&first).Error)

	second := Treatment{AppointmentID: appt.ID, Diagnosis: "Cold"}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
