package types

import (
	"errors"
	"fmt"
)

// Categories every service error falls into.
var (
	ErrValidation  = errors.New("validation failed")
	ErrRateLimited = errors.New("rate limited")
	ErrNotFound    = errors.New("requested item not found")
	ErrUnavailable = errors.New("store unavailable")
)

var (
	ErrInvalidCoordinates = fmt.Errorf("%w: invalid coordinates", ErrValidation)
	ErrInvalidAccuracy    = fmt.Errorf("%w: accuracy must be a non-negative number", ErrValidation)
	ErrInvalidRadius      = fmt.Errorf("%w: radius out of range", ErrValidation)
	ErrInvalidHours       = fmt.Errorf("%w: hours must be between 1 and 168", ErrValidation)
	ErrInvalidVisibility  = fmt.Errorf("%w: unknown profile visibility", ErrValidation)
	ErrInvalidVisRadius   = fmt.Errorf("%w: visibility radius must be between 10 and 5000", ErrValidation)

	ErrUpdateTooSoon = fmt.Errorf("%w: location was updated less than the cooldown ago", ErrRateLimited)

	ErrLocationNotFound = fmt.Errorf("%w: location not found", ErrNotFound)
	ErrLocationInactive = fmt.Errorf("%w: location is not active", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrSettingsNotFound = fmt.Errorf("%w: privacy settings not found", ErrNotFound)
)
