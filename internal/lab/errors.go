package lab

import "errors"

var (
	ErrInvalidBlock      = errors.New("invalid time block")
	ErrNoBlocks          = errors.New("at least one time block is required")
	ErrTooManyBlocks     = errors.New("too many time blocks for one day")
	ErrDuplicateBlock    = errors.New("time block selected twice")
	ErrInvalidComputer   = errors.New("computer is not in the lab roster")
	ErrMissingDate       = errors.New("reservation date is required")
	ErrPastDate          = errors.New("reservation date is in the past")
	ErrMissingField      = errors.New("required field is missing")
	ErrUnknownOption     = errors.New("value is not in the allowed list")
	ErrInvalidStatus     = errors.New("unknown reservation status")
	ErrInvalidTransition = errors.New("reservation status transition not allowed")
	ErrInvalidRange      = errors.New("invalid date range")
)
