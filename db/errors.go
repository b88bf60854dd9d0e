package db

import "fmt"

// ProvisioningError is returned when the notes table cannot be verified or
// created. It is fatal at startup and never retried.
type ProvisioningError struct {
	Table string
	Err   error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision table %s: %v", e.Table, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// StoreError reports a failed round trip to the backing store for a single
// request. The service stays up; the caller gets the message.
type StoreError struct {
	Op          string // get, put or list
	ClassroomID string // empty for list
	Err         error
}

func (e *StoreError) Error() string {
	if e.ClassroomID == "" {
		return fmt.Sprintf("failed to %s notes: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s notes for classroom %s: %v", e.Op, e.ClassroomID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
