package osu

import "errors"

var (
	// ErrAuth means the login did not produce an authenticated session.
	ErrAuth = errors.New("authentication failed")

	// ErrUnresolved means a reference matched none of the known formats.
	ErrUnresolved = errors.New("unrecognized beatmap reference")

	// ErrLookupEmpty means the legacy API knows no beatmap with the given ID.
	ErrLookupEmpty = errors.New("beatmap not found by legacy lookup")
)
