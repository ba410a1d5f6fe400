// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into invite notifications.
package queue

// ApplicationApprovedEvent is published when an admin approves a membership
// application. It carries everything a downstream notifier needs to send the
// invite email, including the token-bearing registration link, without
// querying the primary database.
type ApplicationApprovedEvent struct {
	ApplicationID    uint64 `json:"application_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Company          string `json:"company"`
	RegistrationLink string `json:"registration_link"`
	TokenExpiresAt   string `json:"token_expires_at"`
	ApprovedBy       uint64 `json:"approved_by"`
	ApprovedAt       string `json:"approved_at"`
}
