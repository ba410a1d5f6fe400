// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific error codes. Not-found conditions are reported as
// sql.ErrNoRows, matching the underlying query behaviour.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique key on
// users.email. Handlers translate this into a 400 "email taken" response
// during registration and a conflict during admin provisioning.
var ErrEmailExists = errors.New("email already exists")

// ErrPendingExists is returned when an application submission is blocked by
// an existing PENDING application for the same email.
var ErrPendingExists = errors.New("pending application already exists")

// ErrAlreadyDecided is returned when an approve or reject call targets an
// application whose status is no longer PENDING. Decisions happen exactly
// once; replays surface this error and never mutate state.
var ErrAlreadyDecided = errors.New("application already decided")

// ErrTokenUsed is returned when profile creation collides with the unique
// key on member_profiles.application_id, meaning another registration
// already redeemed the token.
var ErrTokenUsed = errors.New("registration token already used")
