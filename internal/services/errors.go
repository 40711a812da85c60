// Package services defines the business logic for cleaning records.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// Translation into redirects or error pages is performed at the handler
// layer; services only signal the predictable cases.
package services

import "errors"

var (
	// ErrRecordNotFound indicates that the requested cleaning record does
	// not exist. Handlers treat this as a silent redirect back to the list
	// rather than a reported failure.
	ErrRecordNotFound = errors.New("record not found")
)
