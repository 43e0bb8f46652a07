package plans

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrDayNotFound          = errors.New("day not found")
	ErrDayExists            = errors.New("day already exists")
	ErrNoActivePlan         = errors.New("no active plan")
	ErrInvalidState         = errors.New("invalid state for operation")
	ErrDifficultyOutOfRange = errors.New("difficulty out of range")
	ErrSlotOutOfRange       = errors.New("workout slot out of range")
)
