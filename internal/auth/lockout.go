// Package auth holds the pieces of the authentication subsystem that are
// independent of HTTP: the progressive lockout policy, the Principal
// abstraction used by authorization, and the token revocation set.
package auth

import (
	"time"

	"github.com/Adira-Medica/inventory-app/internal/model"
)

// Progressive lockout thresholds.  The counter only resets on a
// successful login, so a 10th consecutive failure extends an existing
// soft lock into the hard window.
const (
	SoftLockThreshold = 5
	HardLockThreshold = 10
	SoftLockDuration  = 15 * time.Minute
	HardLockDuration  = time.Hour
)

// LockoutAfter returns the lockout deadline that applies after the given
// consecutive-failure count, or nil when the account stays unlocked.
func LockoutAfter(failed int, now time.Time) *time.Time {
	switch {
	case failed >= HardLockThreshold:
		t := now.Add(HardLockDuration)
		return &t
	case failed >= SoftLockThreshold:
		t := now.Add(SoftLockDuration)
		return &t
	}
	return nil
}

// IsLockedOut reports whether the user is inside a lockout window.  A
// locked-out user cannot authenticate regardless of password correctness.
func IsLockedOut(u model.User, now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
