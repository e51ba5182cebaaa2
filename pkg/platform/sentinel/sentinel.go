package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Providers, sinks and services
// return these (optionally wrapped) so callers can translate them into domain
// errors without depending on the producing package.
//
// These represent factual states, not validation failures:
// - ErrNotFound: the referenced entity is not in the current snapshot
// - ErrUnavailable: an upstream or sink is temporarily unavailable
//
// For request validation failures, use the notification schema errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
