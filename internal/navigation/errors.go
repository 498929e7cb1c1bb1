package navigation

import "errors"

var (
	ErrInvalidGainConfig      = errors.New("invalid gain config")
	ErrNoMedia                = errors.New("no media loaded")
	ErrTrajectoryUnavailable  = errors.New("trajectory unavailable")
	ErrPointerLockUnavailable = errors.New("pointer lock unavailable")
	ErrUnknownStrategy        = errors.New("unknown strategy")
	ErrMissingTarget          = errors.New("missing target")
	ErrStrategyUnavailable    = errors.New("strategy unavailable")
	ErrNotSupported           = errors.New("not supported by active strategy")
	ErrInvalidMedia           = errors.New("invalid media")
)
