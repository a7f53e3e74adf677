package services

import "errors"

// Shared service-layer errors, mapped to HTTP statuses at the handler
// boundary.
var (
	// Not found
	ErrNotFound           = errors.New("requested resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrBracketNotFound    = errors.New("bracket not found for tournament")
	ErrMatchNotFound      = errors.New("match not found in bracket")

	// Invalid input
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrTournamentNameInvalid  = errors.New("tournament name must be between 3 and 100 characters")
	ErrTournamentInvalidDates = errors.New("tournament end date must be after start date")
	ErrNotEnoughPlayers       = errors.New("at least 2 confirmed players are required to generate a bracket")
	ErrScoresEqual            = errors.New("scores cannot be equal: a strict winner must be determined")
	ErrScoreNegative          = errors.New("scores must be non-negative")
	ErrMatchMissingPlayers    = errors.New("match does not have both players assigned yet")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Invalid state
	ErrMatchAlreadyDecided             = errors.New("match already has a recorded result")
	ErrRegistrationNotOpen             = errors.New("tournament registration is not open")
	ErrTournamentFull                  = errors.New("tournament registration is full")
	ErrRegistrationConflict            = errors.New("user is already registered for this tournament")
	ErrTournamentInvalidTransition     = errors.New("invalid tournament status transition")
	ErrBracketFormatUnsupported    = errors.New("bracket generation is not supported for this tournament format")

	// Consistency errors are fatal: they indicate a corrupted bracket (for
	// example a dangling next-match link) and must halt processing of that
	// bracket rather than be retried.
	ErrBracketConsistency = errors.New("bracket consistency violation")

	// ErrCompletionSignalFailed marks the at-least-once boundary between
	// the engine and the tournament status sink: the match decision is
	// already persisted and is not rolled back when the sink fails.
	ErrCompletionSignalFailed = errors.New("result recorded, but tournament completion signal failed")
)
