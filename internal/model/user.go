package model

import "time"

// User roles and account statuses. Roles form a closed two-variant set;
// authorization decisions go through the role middleware rather than ad hoc
// string comparisons in handlers.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"

	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

// User represents an authenticated account as stored in the `users` table.
// Only ACTIVE users may log in. Admins are provisioned out of band via
// cmd/create-admin; members are created by registration redemption.
//
// Fields:
//
//	ID           – primary key identifier.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Name         – display name.
//	Role         – ADMIN or MEMBER.
//	Status       – ACTIVE, INACTIVE or SUSPENDED.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Role         string    // users.role
	Status       string    // users.status
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// MemberProfile is the 1:1 extension of a MEMBER user, created atomically
// with the User during registration. It carries optional contact and
// professional fields and a back-reference to the originating application
// for audit purposes. The unique key on ApplicationID is what makes token
// redemption single-use under concurrent attempts.
//
// Fields:
//
//	ID                 – primary key identifier.
//	UserID             – owning user (unique, cascade-deleted with it).
//	ApplicationID      – originating application (unique).
//	Phone … Bio        – optional profile fields supplied at registration.
//	CreatedAt          – timestamp of creation.
type MemberProfile struct {
	ID                 uint64    // member_profiles.id
	UserID             uint64    // member_profiles.user_id (unique)
	ApplicationID      uint64    // member_profiles.application_id (unique)
	Phone              *string   // member_profiles.phone
	Position           *string   // member_profiles.position
	Company            *string   // member_profiles.company (copied from the application)
	CompanyDescription *string   // member_profiles.company_description
	ExpertiseArea      *string   // member_profiles.expertise_area
	LinkedinURL        *string   // member_profiles.linkedin_url
	WebsiteURL         *string   // member_profiles.website_url
	Bio                *string   // member_profiles.bio
	CreatedAt          time.Time // member_profiles.created_at
}
