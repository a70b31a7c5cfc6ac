// ABOUTME: Domain errors returned by the coordinator.
// ABOUTME: Sentinels for expected outcomes, typed errors for context.
package coordinator

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/levelup/internal/session"
)

var (
	ErrNotAuthenticated = session.ErrNotAuthenticated
	ErrAlreadyClaimed   = errors.New("quest already claimed today")
	ErrNoLootBoxes      = errors.New("no loot boxes to open")
	ErrVaultLocked      = errors.New("vault locked")
	ErrWorkoutRequired  = errors.New("log a workout today to unlock the vault")
	ErrUnknownQuest     = errors.New("unknown quest")
	ErrInvalidPIN       = errors.New("PIN must be 4 to 8 digits")
	ErrInvalidImport    = errors.New("invalid import")
)

// ClaimBlockedError is returned when today's quest has already been claimed.
// It matches ErrAlreadyClaimed with errors.Is.
type ClaimBlockedError struct {
	NextAvailable time.Time
}

func (e *ClaimBlockedError) Error() string {
	return fmt.Sprintf("%s; next claim at %s", ErrAlreadyClaimed, e.NextAvailable.Format(time.RFC3339))
}

func (e *ClaimBlockedError) Unwrap() error {
	return ErrAlreadyClaimed
}

// Until returns how long until the next claim opens.
func (e *ClaimBlockedError) Until(now time.Time) time.Duration {
	d := e.NextAvailable.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// PersistenceError wraps a failed remote write or read. Nothing was applied
// locally, so the operation is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
