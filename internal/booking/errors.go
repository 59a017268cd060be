package booking

import "errors"

// Error kinds returned by the booking service. All of them are expected
// failures that the handler layer translates into HTTP responses; none are
// fatal to the process.
var (
	ErrNotFound        = errors.New("referenced record not found")
	ErrUnauthorized    = errors.New("caller does not control this record")
	ErrInvalidState    = errors.New("operation not allowed in current appointment status")
	ErrInvalidSlot     = errors.New("slot date or time is not bookable")
	ErrSlotConflict    = errors.New("slot already has a booked appointment")
	ErrValidation      = errors.New("missing or invalid field")
	ErrInvalidRange    = errors.New("availability window outside the allowed range")
	ErrDuplicateWindow = errors.New("identical availability window already exists")
)
