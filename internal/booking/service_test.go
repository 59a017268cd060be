package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// noopLocker runs the critical section without any distributed lock. The
// transaction and the slot-key unique index still guard the tests.
type noopLocker struct{}

func (noopLocker) WithSlotLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:testdb_booking_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = models.Migrate(db)
	assert.NoError(t, err)

	return db
}

// newTestService pins "today" to 2026-09-15 so date comparisons are
// deterministic.
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewService(db, noopLocker{}, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, db
}

func seedDoctor(t *testing.T, db *gorm.DB) models.DoctorProfile {
	spec := models.Specialization{Name: fmt.Sprintf("Cardiology-%d", time.Now().UnixNano())}
	assert.NoError(t, db.Create(&spec).Error)

	user := models.User{Email: fmt.Sprintf("doc-%s@hospital.com", spec.ID), Role: models.RoleDoctor}
	assert.NoError(t, user.SetPassword("secret123"))
	assert.NoError(t, db.Create(&user).Error)

	doctor := models.DoctorProfile{
		UserID:           user.ID,
		Name:             "Dr. Test",
		SpecializationID: spec.ID,
		IsActive:         true,
	}
	assert.NoError(t, db.Create(&doctor).Error)
	return doctor
}

func seedPatient(t *testing.T, db *gorm.DB) models.PatientProfile {
	user := models.User{Email: fmt.Sprintf("pat-%d@example.com", time.Now().UnixNano()), Role: models.RolePatient}
	assert.NoError(t, user.SetPassword("secret123"))
	assert.NoError(t, db.Create(&user).Error)

	patient := models.PatientProfile{UserID: user.ID, Name: "Test Patient"}
	assert.NoError(t, db.Create(&patient).Error)
	return patient
}

func TestBookAppointment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusBooked, appt.Status)
	assert.NotNil(t, appt.SlotKey)
	assert.Equal(t, models.SlotKeyFor(doctor.ID, "2026-09-16", "10:00"), *appt.SlotKey)
}

func TestBookSlotConflict(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	first := seedPatient(t, db)
	second := seedPatient(t, db)

	_, err := svc.Book(context.Background(), first.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	_, err = svc.Book(context.Background(), second.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.ErrorIs(t, err, ErrSlotConflict)

	// A different time with the same doctor is fine.
	_, err = svc.Book(context.Background(), second.ID, doctor.ID, "2026-09-16", "10:30", "checkup")
	assert.NoError(t, err)
}

func TestBookFreedSlotAfterCancel(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	first := seedPatient(t, db)
	second := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), first.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, first.ID, models.RolePatient)
	assert.NoError(t, err)

	_, err = svc.Book(context.Background(), second.ID, doctor.ID, "2026-09-16", "10:00", "follow-up")
	assert.NoError(t, err)
}

func TestBookInvalidSlot(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	_, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-01", "10:00", "past date")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = svc.Book(context.Background(), patient.ID, doctor.ID, "16-09-2026", "10:00", "bad date")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "25:99", "bad time")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookUnknownOrInactiveDoctor(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	_, err := svc.Book(context.Background(), patient.ID, "no-such-doctor", "2026-09-16", "10:00", "checkup")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, db.Model(&models.DoctorProfile{}).
		Where("id = ?", doctor.ID).Update("is_active", false).Error)

	_, err = svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRescheduleAppointment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)
	other := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	moved, err := svc.Reschedule(context.Background(), appt.ID, patient.ID, "2026-09-17", "11:00")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-17", moved.Date)
	assert.Equal(t, "11:00", moved.Time)
	assert.Equal(t, models.StatusBooked, moved.Status)

	// The old slot is free again.
	_, err = svc.Book(context.Background(), other.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
}

func TestRescheduleToOwnSlot(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	// The appointment's own row must not count as a conflict.
	_, err = svc.Reschedule(context.Background(), appt.ID, patient.ID, "2026-09-16", "10:00")
	assert.NoError(t, err)
}

func TestRescheduleConflictAndOwnership(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)
	other := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
	_, err = svc.Book(context.Background(), other.ID, doctor.ID, "2026-09-16", "11:00", "checkup")
	assert.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, patient.ID, "2026-09-16", "11:00")
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = svc.Reschedule(context.Background(), appt.ID, other.ID, "2026-09-18", "09:00")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRescheduleTerminalAppointment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
	_, err = svc.Cancel(context.Background(), appt.ID, patient.ID, models.RolePatient)
	assert.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, patient.ID, "2026-09-17", "11:00")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelAppointment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, patient.ID, models.RolePatient)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.SlotKey)

	// Cancelled is terminal.
	_, err = svc.Cancel(context.Background(), appt.ID, patient.ID, models.RolePatient)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelByDoctor(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, doctor.ID, models.RoleDoctor)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestCancelUnauthorized(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	otherDoctor := seedDoctor(t, db)
	patient := seedPatient(t, db)
	other := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, other.ID, models.RolePatient)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Cancel(context.Background(), appt.ID, otherDoctor.ID, models.RoleDoctor)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCompleteAppointment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	completed, treatment, err := svc.Complete(context.Background(), appt.ID, doctor.ID, "Hypertension", "Lisinopril 10mg", "review in 4 weeks")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Nil(t, completed.SlotKey)
	assert.Equal(t, appt.ID, treatment.AppointmentID)
	assert.Equal(t, "Hypertension", treatment.Diagnosis)

	// Completed is terminal.
	_, _, err = svc.Complete(context.Background(), appt.ID, doctor.ID, "Again", "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Cancel(context.Background(), appt.ID, patient.ID, models.RolePatient)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteRequiresDiagnosis(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	_, _, err = svc.Complete(context.Background(), appt.ID, doctor.ID, "   ", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	// The failed completion must not leave a treatment behind.
	var count int64
	assert.NoError(t, db.Model(&models.Treatment{}).
		Where("appointment_id = ?", appt.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	reloaded, err := svc.Get(context.Background(), appt.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusBooked, reloaded.Status)
}

func TestCompleteUnauthorized(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	otherDoctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)

	_, _, err = svc.Complete(context.Background(), appt.ID, otherDoctor.ID, "Flu", "", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetAppointmentWithTreatment(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
	_, _, err = svc.Complete(context.Background(), appt.ID, doctor.ID, "Flu", "rest", "")
	assert.NoError(t, err)

	got, err := svc.Get(context.Background(), appt.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got.Treatment)
	assert.Equal(t, "Flu", got.Treatment.Diagnosis)

	_, err = svc.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAppointments(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)

	first, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "a")
	assert.NoError(t, err)
	_, err = svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-17", "09:00", "b")
	assert.NoError(t, err)
	_, err = svc.Cancel(context.Background(), first.ID, patient.ID, models.RolePatient)
	assert.NoError(t, err)

	all, err := svc.ListForPatient(context.Background(), patient.ID, "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	// Newest slot first.
	assert.Equal(t, "2026-09-17", all[0].Date)

	booked, err := svc.ListForPatient(context.Background(), patient.ID, models.StatusBooked)
	assert.NoError(t, err)
	assert.Len(t, booked, 1)
	assert.Equal(t, "2026-09-17", booked[0].Date)

	forDoctor, err := svc.ListForDoctor(context.Background(), doctor.ID, models.StatusCancelled)
	assert.NoError(t, err)
	assert.Len(t, forDoctor, 1)
	assert.Equal(t, first.ID, forDoctor[0].ID)
}

func TestTreatmentHistory(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	patient := seedPatient(t, db)
	other := seedPatient(t, db)

	appt, err := svc.Book(context.Background(), patient.ID, doctor.ID, "2026-09-16", "10:00", "checkup")
	assert.NoError(t, err)
	_, _, err = svc.Complete(context.Background(), appt.ID, doctor.ID, "Flu", "rest", "")
	assert.NoError(t, err)

	otherAppt, err := svc.Book(context.Background(), other.ID, doctor.ID, "2026-09-16", "11:00", "checkup")
	assert.NoError(t, err)
	_, _, err = svc.Complete(context.Background(), otherAppt.ID, doctor.ID, "Cold", "", "")
	assert.NoError(t, err)

	history, err := svc.TreatmentHistory(context.Background(), patient.ID)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, "Flu", history[0].Diagnosis)
	assert.Equal(t, appt.ID, history[0].Appointment.ID)
}
