package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkRejected is the root of every handshake validation failure
	ErrLinkRejected = errors.New("link rejected")

	ErrOrderNotFound   = errors.New("order not found")
	ErrProductMissing  = errors.New("order line references a missing product")
	ErrEmptySignature  = errors.New("signature must not be empty when linking")
	ErrUnknownHook     = errors.New("unknown hook")
	ErrSettingsMissing = errors.New("settings not found")
)

// LinkError is a handshake validation failure. Message is the plain diagnostic shown to the caller.
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return e.Message
}

func (e *LinkError) Unwrap() error {
	return ErrLinkRejected
}

// NewLinkError builds a diagnostic in the link_site format
func NewLinkError(format string, args ...any) *LinkError {
	return &LinkError{Message: "link_site: " + fmt.Sprintf(format, args...)}
}

// ExtractionError records where order enrichment stopped
type ExtractionError struct {
	Version   string
	Component string
	Line      int
	Cause     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("order extraction failed in %s: %v", e.Component, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Fingerprint is the opaque err value sent with the sale pixel
func (e *ExtractionError) Fingerprint() string {
	return fmt.Sprintf("%s_%s_%d", e.Version, e.Component, e.Line)
}
