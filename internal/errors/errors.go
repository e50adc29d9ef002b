// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
)

// ErrInvalidFilter marks a segment query whose comparator expression cannot
// be parsed. Surfaced to the caller, never retried.
var ErrInvalidFilter = errors.New("invalid segment filter syntax")

// ErrPartialResolution marks a recipient resolution that stopped early
// because a page query failed; everything fetched before the failure was
// still handed onward.
var ErrPartialResolution = errors.New("recipient resolution stopped early")

// ErrNoApplications marks a campaign job that references only missing or
// foreign applications. Not retryable: redelivery cannot make them appear.
var ErrNoApplications = errors.New("no applications found for campaign")

// ValidationError is a caller mistake: wrong status for a transition, a
// schedule in the past, an immediate send on a future-scheduled campaign.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string {
    return e.Reason
}

func NewValidation(format string, args ...any) error {
    return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
    var v *ValidationError
    return errors.As(err, &v)
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID int64
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int64) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

func IsNotFound(err error) bool {
    var nf *ErrCampaignNotFound
    return errors.As(err, &nf)
}
