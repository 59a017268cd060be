package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
	redisclient "hospital-appointment-server/internal/redis"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Service is the booking engine. It owns every mutation of Appointment,
// AvailabilityWindow and Treatment rows and enforces the no-double-booking
// and lifecycle invariants. Role checks happen in the middleware; the
// service only verifies that the calling profile owns the target row.
type Service struct {
	db     *gorm.DB
	locker redisclient.Locker
	log    zerolog.Logger

	// now is a hook for tests that need to pin "today".
	now func() time.Time
}

// NewService creates the booking service.
func NewService(db *gorm.DB, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		db:     db,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

func parseDate(value string) (string, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

func parseClock(value string) (string, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return "", err
	}
	return t.Format(clockLayout), nil
}

// Book creates a new Booked appointment for a patient with an active
// doctor. The conflict check and the insert run inside a per-slot
// distributed lock and a single transaction; the unique index on the slot
// key is the final barrier if two bookings still race.
func (s *Service) Book(ctx context.Context, patientID, doctorID, date, timeOfDay, reason string) (*models.Appointment, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidSlot)
	}
	timeOfDay, err = parseClock(timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time", ErrInvalidSlot)
	}
	if date < s.today() {
		return nil, fmt.Errorf("%w: date is in the past", ErrInvalidSlot)
	}

	var doctor models.DoctorProfile
	if err := s.db.WithContext(ctx).
		First(&doctor, "id = ? AND is_active = ?", doctorID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor", ErrNotFound)
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	slotKey := models.SlotKeyFor(doctorID, date, timeOfDay)
	var created *models.Appointment

	err = s.locker.WithSlotLock(ctx, slotKey, func(lockCtx context.Context) error {
		return s.db.WithContext(lockCtx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Appointment{}).
				Where("doctor_id = ? AND date = ? AND time = ? AND status = ?",
					doctorID, date, timeOfDay, models.StatusBooked).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check slot: %w", err)
			}
			if count > 0 {
				return ErrSlotConflict
			}

			key := slotKey
			appt := models.Appointment{
				PatientID: patientID,
				DoctorID:  doctorID,
				Date:      date,
				Time:      timeOfDay,
				Reason:    reason,
				Status:    models.StatusBooked,
				SlotKey:   &key,
			}
			if err := tx.Create(&appt).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrSlotConflict
				}
				return fmt.Errorf("create appointment: %w", err)
			}
			created = &appt
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			// Another booking for this slot is in flight.
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID).
		Str("doctor_id", doctorID).
		Str("patient_id", patientID).
		Str("slot", date+" "+timeOfDay).
		Msg("appointment booked")

	return created, nil
}

// Reschedule moves a Booked appointment owned by callerPatientID to a new
// slot. The appointment's own row is excluded from the conflict check so a
// patient can shift within the same day.
func (s *Service) Reschedule(ctx context.Context, appointmentID, callerPatientID, newDate, newTime string) (*models.Appointment, error) {
	newDate, err := parseDate(newDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidSlot)
	}
	newTime, err = parseClock(newTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time", ErrInvalidSlot)
	}
	if newDate < s.today() {
		return nil, fmt.Errorf("%w: date is in the past", ErrInvalidSlot)
	}

	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment", ErrNotFound)
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.PatientID != callerPatientID {
		return nil, ErrUnauthorized
	}
	if appt.Status != models.StatusBooked {
		return nil, ErrInvalidState
	}

	slotKey := models.SlotKeyFor(appt.DoctorID, newDate, newTime)

	err = s.locker.WithSlotLock(ctx, slotKey, func(lockCtx context.Context) error {
		return s.db.WithContext(lockCtx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Appointment{}).
				Where("doctor_id = ? AND date = ? AND time = ? AND status = ? AND id != ?",
					appt.DoctorID, newDate, newTime, models.StatusBooked, appt.ID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check slot: %w", err)
			}
			if count > 0 {
				return ErrSlotConflict
			}

			res := tx.Model(&models.Appointment{}).
				Where("id = ? AND status = ?", appt.ID, models.StatusBooked).
				Updates(map[string]interface{}{
					"date":     newDate,
					"time":     newTime,
					"slot_key": slotKey,
				})
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
					return ErrSlotConflict
				}
				return fmt.Errorf("update appointment: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Status changed under us.
				return ErrInvalidState
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	appt.Date = newDate
	appt.Time = newTime
	appt.SlotKey = &slotKey

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("slot", newDate+" "+newTime).
		Msg("appointment rescheduled")

	return &appt, nil
}

// Cancel transitions a Booked appointment to Cancelled. The caller must be
// the owning patient or the assigned doctor. Cancelled is terminal and the
// slot becomes free for others.
func (s *Service) Cancel(ctx context.Context, appointmentID, callerID string, callerRole models.Role) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment", ErrNotFound)
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	switch callerRole {
	case models.RolePatient:
		if appt.PatientID != callerID {
			return nil, ErrUnauthorized
		}
	case models.RoleDoctor:
		if appt.DoctorID != callerID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}

	if appt.Status != models.StatusBooked {
		return nil, ErrInvalidState
	}

	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, models.StatusBooked).
		Updates(map[string]interface{}{
			"status":   models.StatusCancelled,
			"slot_key": nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("cancel appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	appt.Status = models.StatusCancelled
	appt.SlotKey = nil

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("cancelled_by", string(callerRole)).
		Msg("appointment cancelled")

	return &appt, nil
}

// Complete transitions a Booked appointment to Completed and records the
// treatment. The status flip and the treatment insert share a transaction:
// both happen or neither does.
func (s *Service) Complete(ctx context.Context, appointmentID, callerDoctorID, diagnosis, prescription, notes string) (*models.Appointment, *models.Treatment, error) {
	if strings.TrimSpace(diagnosis) == "" {
		return nil, nil, fmt.Errorf("%w: diagnosis is required", ErrValidation)
	}

	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: appointment", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.DoctorID != callerDoctorID {
		return nil, nil, ErrUnauthorized
	}
	if appt.Status != models.StatusBooked {
		return nil, nil, ErrInvalidState
	}

	var treatment models.Treatment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, models.StatusBooked).
			Updates(map[string]interface{}{
				"status":   models.StatusCompleted,
				"slot_key": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("complete appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		treatment = models.Treatment{
			AppointmentID: appt.ID,
			Diagnosis:     diagnosis,
			Prescription:  prescription,
			Notes:         notes,
		}
		if err := tx.Create(&treatment).Error; err != nil {
			return fmt.Errorf("create treatment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	appt.Status = models.StatusCompleted
	appt.SlotKey = nil

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("treatment_id", treatment.ID).
		Msg("appointment completed")

	return &appt, &treatment, nil
}

// Get fetches a single appointment with its treatment, if any. The caller
// authorization happens at the handler boundary.
func (s *Service) Get(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).Preload("Treatment").
		First(&appt, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment", ErrNotFound)
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	return &appt, nil
}

// ListForPatient returns a patient's appointments, newest slot first, with
// an optional status filter.
func (s *Service) ListForPatient(ctx context.Context, patientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	return s.list(ctx, "patient_id", patientID, status)
}

// ListForDoctor returns a doctor's appointments, newest slot first, with
// an optional status filter.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	return s.list(ctx, "doctor_id", doctorID, status)
}

func (s *Service) list(ctx context.Context, column, id string, status models.AppointmentStatus) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("date desc, time desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// TreatmentHistory returns the treatments recorded for a patient's
// completed appointments, most recent first.
func (s *Service) TreatmentHistory(ctx context.Context, patientID string) ([]models.Treatment, error) {
	var treatments []models.Treatment
	err := s.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = treatments.appointment_id").
		Where("appointments.patient_id = ? AND appointments.status = ?", patientID, models.StatusCompleted).
		Order("treatments.created_at desc").
		Preload("Appointment").
		Find(&treatments).Error
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	return treatments, nil
}
