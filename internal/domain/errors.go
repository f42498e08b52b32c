package domain

import "errors"

var (
	ErrRunInProgress    = errors.New("scheduler run already in progress")
	ErrHabitNotFound    = errors.New("habit not found")
	ErrInstanceNotFound = errors.New("schedule instance not found")
	ErrUnknownTimezone  = errors.New("unknown timezone")
)
