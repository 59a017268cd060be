package booking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// HorizonDays bounds how far ahead a doctor may declare availability:
// windows must fall within [today, today+HorizonDays-1].
const HorizonDays = 7

// Horizon returns the inclusive [from, to] date bounds of the current
// booking horizon, starting today on the service clock.
func (s *Service) Horizon() (from, to string) {
	return s.today(), s.now().AddDate(0, 0, HorizonDays-1).Format(dateLayout)
}

// AddWindow declares a new availability window for a doctor. Overlapping
// windows are allowed; only an exact (date, start, end) duplicate is
// rejected. Windows are validated at creation time only.
func (s *Service) AddWindow(ctx context.Context, doctorID, date, startTime, endTime string) (*models.AvailabilityWindow, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidRange)
	}
	startTime, err = parseClock(startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time", ErrInvalidRange)
	}
	endTime, err = parseClock(endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end time", ErrInvalidRange)
	}
	if startTime >= endTime {
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidRange)
	}

	from, to := s.Horizon()
	if date < from || date > to {
		return nil, fmt.Errorf("%w: date must be within the next %d days", ErrInvalidRange, HorizonDays)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AvailabilityWindow{}).
		Where("doctor_id = ? AND date = ? AND start_time = ? AND end_time = ?",
			doctorID, date, startTime, endTime).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check window: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateWindow
	}

	window := models.AvailabilityWindow{
		DoctorID:    doctorID,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		IsAvailable: true,
	}
	if err := s.db.WithContext(ctx).Create(&window).Error; err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	s.log.Info().
		Str("window_id", window.ID).
		Str("doctor_id", doctorID).
		Str("window", date+" "+startTime+"-"+endTime).
		Msg("availability window added")

	return &window, nil
}

// RemoveWindow deletes a window owned by the calling doctor.
func (s *Service) RemoveWindow(ctx context.Context, windowID, callerDoctorID string) error {
	var window models.AvailabilityWindow
	if err := s.db.WithContext(ctx).First(&window, "id = ?", windowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: availability window", ErrNotFound)
		}
		return fmt.Errorf("load window: %w", err)
	}
	if window.DoctorID != callerDoctorID {
		return ErrUnauthorized
	}

	if err := s.db.WithContext(ctx).Delete(&window).Error; err != nil {
		return fmt.Errorf("delete window: %w", err)
	}

	s.log.Info().
		Str("window_id", windowID).
		Str("doctor_id", callerDoctorID).
		Msg("availability window removed")

	return nil
}

// ListWindows returns a doctor's windows ordered by (date, start time).
// Empty fromDate/toDate leave that bound open; onlyAvailable filters out
// windows the doctor has marked unavailable.
func (s *Service) ListWindows(ctx context.Context, doctorID, fromDate, toDate string, onlyAvailable bool) ([]models.AvailabilityWindow, error) {
	query := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID)

	if fromDate != "" {
		from, err := parseDate(fromDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from date", ErrInvalidRange)
		}
		query = query.Where("date >= ?", from)
	}
	if toDate != "" {
		to, err := parseDate(toDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to date", ErrInvalidRange)
		}
		query = query.Where("date <= ?", to)
	}
	if onlyAvailable {
		query = query.Where("is_available = ?", true)
	}

	var windows []models.AvailabilityWindow
	if err := query.Order("date, start_time").Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return windows, nil
}
