package ledger

import "errors"

var (
	ErrRoundNotActive      = errors.New("round_not_active")
	ErrRoundInProgress     = errors.New("round_in_progress")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrNoSlotSelected      = errors.New("no_slot_selected")
	ErrInvalidSlot         = errors.New("invalid_slot")
	ErrBetAlreadyPlaced    = errors.New("bet_already_placed")
)

// IsRejection reports whether err is a validation reason code rather than a
// failure.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrRoundNotActive),
		errors.Is(err, ErrRoundInProgress),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrNoSlotSelected),
		errors.Is(err, ErrInvalidSlot),
		errors.Is(err, ErrBetAlreadyPlaced):
		return true
	default:
		return false
	}
}
