package model

import "time"

// Application statuses. An application starts as PENDING and is decided
// exactly once by an admin. REJECTED is terminal. An APPROVED application is
// considered redeemed once its token fields have been cleared by a
// successful registration.
const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

// Application represents a candidate submission as stored in the
// `applications` table.
//
// Fields:
//
//	ID             – primary key identifier.
//	Name           – candidate name.
//	Email          – candidate email (not unique; only one PENDING row per email).
//	Company        – candidate company.
//	Motivation     – free-form motivation text (50–1000 chars).
//	Status         – PENDING, APPROVED or REJECTED.
//	ReviewedBy     – admin user that decided the application (nullable).
//	ReviewedAt     – decision timestamp (nullable).
//	Token          – opaque registration token, unique (nullable; null before
//	                 approval and again after successful redemption).
//	TokenExpiresAt – registration token expiry (nullable, paired with Token).
//	CreatedAt      – timestamp of submission.
type Application struct {
	ID             uint64     // applications.id
	Name           string     // applications.name
	Email          string     // applications.email
	Company        string     // applications.company
	Motivation     string     // applications.motivation
	Status         string     // applications.status
	ReviewedBy     *uint64    // applications.reviewed_by (nullable)
	ReviewedAt     *time.Time // applications.reviewed_at (nullable)
	Token          *string    // applications.token (nullable, unique)
	TokenExpiresAt *time.Time // applications.token_expires_at (nullable)
	CreatedAt      time.Time  // applications.created_at
}
