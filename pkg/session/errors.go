package session

import "errors"

var (
	// ErrTriggerIgnored is returned when the current phase does not accept a trigger.
	ErrTriggerIgnored = errors.New("session: trigger ignored")
	// ErrStaleTick is returned for a tick from a timer that was stopped or restarted.
	ErrStaleTick = errors.New("session: stale timer tick")
)
