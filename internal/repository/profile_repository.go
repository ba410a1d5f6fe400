package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/FabioHAraujo/ag-sistemas/internal/model"
)

// ProfileRepo provides persistence for member profiles. A profile is only
// ever created inside the registration transaction, together with its user
// and the token invalidation. The unique key on application_id is the
// storage-level guarantee that a registration token is redeemed at most
// once: when two redemptions race, the second insert fails and its whole
// transaction rolls back.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// CreateTx inserts a member profile within an existing transaction and
// populates the generated ID on the record. A duplicate-key failure on
// application_id is reported as ErrTokenUsed; on user_id it would indicate a
// programming error but is folded into the same sentinel since either way
// the registration must not proceed.
func (r *ProfileRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.MemberProfile) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO member_profiles
		 (user_id, application_id, phone, position, company, company_description,
		  expertise_area, linkedin_url, website_url, bio)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.ApplicationID, p.Phone, p.Position, p.Company, p.CompanyDescription,
		p.ExpertiseArea, p.LinkedinURL, p.WebsiteURL, p.Bio)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrTokenUsed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ExistsForApplication reports whether a profile already references the
// given application, i.e. whether its registration token has been redeemed.
func (r *ProfileRepo) ExistsForApplication(ctx context.Context, applicationID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM member_profiles WHERE application_id=?)",
		applicationID).Scan(&exists)
	return exists, err
}

// GetByUserID fetches the profile belonging to a user. sql.ErrNoRows is
// returned when the user has no profile (admins never do).
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.MemberProfile, error) {
	var p model.MemberProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, application_id, phone, position, company, company_description,
		        expertise_area, linkedin_url, website_url, bio, created_at
		 FROM member_profiles WHERE user_id=? LIMIT 1`, userID).
		Scan(&p.ID, &p.UserID, &p.ApplicationID, &p.Phone, &p.Position, &p.Company,
			&p.CompanyDescription, &p.ExpertiseArea, &p.LinkedinURL, &p.WebsiteURL,
			&p.Bio, &p.CreatedAt)
	return p, err
}
