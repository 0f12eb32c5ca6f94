// Package errs defines the domain error taxonomy shared by the REST
// handlers and the realtime gateway.
package errs

import "fmt"

// ValidationError indicates missing or malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates an absent circle or message.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// CapacityError indicates a join attempt against a full circle.
type CapacityError struct {
	CircleID string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("circle %s is full", e.CircleID)
}

// MembershipError indicates a gateway action from a non-member.
type MembershipError struct {
	CircleID    string
	AnonymousID string
}

func (e *MembershipError) Error() string {
	return fmt.Sprintf("%s is not an active member of circle %s", e.AnonymousID, e.CircleID)
}

// ModerationError indicates a muted or banned identity.
type ModerationError struct {
	AnonymousID string
	Reason      string
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("%s is restricted: %s", e.AnonymousID, e.Reason)
}
