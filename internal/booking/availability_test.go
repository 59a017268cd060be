package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddWindow(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)

	window, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "12:00")
	assert.NoError(t, err)
	assert.Equal(t, doctor.ID, window.DoctorID)
	assert.Equal(t, "2026-09-16", window.Date)
	assert.True(t, window.IsAvailable)
}

func TestAddWindowInvalidRange(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)

	_, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "12:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "16/09/2026", "09:00", "12:00")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "9am", "12:00")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestHorizon(t *testing.T) {
	svc, _ := newTestService(t)

	// The service clock is pinned to 2026-09-15.
	from, to := svc.Horizon()
	assert.Equal(t, "2026-09-15", from)
	assert.Equal(t, "2026-09-21", to)
}

func TestAddWindowHorizon(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)

	// Today is pinned to 2026-09-15, so the horizon ends on 2026-09-21.
	_, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-15", "09:00", "12:00")
	assert.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-21", "09:00", "12:00")
	assert.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-22", "09:00", "12:00")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-14", "09:00", "12:00")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAddWindowDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	other := seedDoctor(t, db)

	_, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "12:00")
	assert.NoError(t, err)

	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "12:00")
	assert.ErrorIs(t, err, ErrDuplicateWindow)

	// Overlap is not a duplicate.
	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "10:00", "13:00")
	assert.NoError(t, err)

	// Same window for another doctor is fine.
	_, err = svc.AddWindow(context.Background(), other.ID, "2026-09-16", "09:00", "12:00")
	assert.NoError(t, err)
}

func TestRemoveWindow(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)
	other := seedDoctor(t, db)

	window, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "12:00")
	assert.NoError(t, err)

	err = svc.RemoveWindow(context.Background(), window.ID, other.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = svc.RemoveWindow(context.Background(), window.ID, doctor.ID)
	assert.NoError(t, err)

	err = svc.RemoveWindow(context.Background(), window.ID, doctor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWindows(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db)

	_, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-17", "09:00", "12:00")
	assert.NoError(t, err)
	_, err = svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "14:00", "17:00")
	assert.NoError(t, err)
	hidden, err := svc.AddWindow(context.Background(), doctor.ID, "2026-09-16", "09:00", "12:00")
	assert.NoError(t, err)

	// Mark one window unavailable directly; the service only creates
	// available windows.
	assert.NoError(t, db.Model(hidden).Update("is_available", false).Error)

	windows, err := svc.ListWindows(context.Background(), doctor.ID, "", "", false)
	assert.NoError(t, err)
	assert.Len(t, windows, 3)
	// Ordered by date, then start time.
	assert.Equal(t, "2026-09-16", windows[0].Date)
	assert.Equal(t, "09:00", windows[0].StartTime)
	assert.Equal(t, "14:00", windows[1].StartTime)
	assert.Equal(t, "2026-09-17", windows[2].Date)

	available, err := svc.ListWindows(context.Background(), doctor.ID, "", "", true)
	assert.NoError(t, err)
	assert.Len(t, available, 2)

	bounded, err := svc.ListWindows(context.Background(), doctor.ID, "2026-09-17", "2026-09-17", false)
	assert.NoError(t, err)
	assert.Len(t, bounded, 1)

	_, err = svc.ListWindows(context.Background(), doctor.ID, "not-a-date", "", false)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
