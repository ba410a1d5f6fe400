package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/FabioHAraujo/ag-sistemas/internal/model"
)

// ApplicationRepo provides persistence for membership applications and the
// state transitions of the admission workflow. Decision guards are pushed
// into conditional UPDATE statements so that an application can be decided
// exactly once even under concurrent admin requests. All timestamp fields
// are stored in UTC.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo returns an ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// Create inserts a new PENDING application and returns its ID. It refuses
// the insert with ErrPendingExists when a PENDING application already exists
// for the same email. Submission is allowed again once the prior one has
// been approved or rejected.
func (r *ApplicationRepo) Create(ctx context.Context, name, email, company, motivation string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM applications WHERE email=? AND status='PENDING')",
		email).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrPendingExists
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO applications (name, email, company, motivation, status) VALUES (?,?,?,?,'PENDING')",
		name, email, company, motivation)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const applicationColumns = `id, name, email, company, motivation, status,
	reviewed_by, reviewed_at, token, token_expires_at, created_at`

// GetByID fetches a single application. sql.ErrNoRows is returned when the
// ID is unknown.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (model.Application, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id=? LIMIT 1", id)
	return scanApplication(row)
}

// GetByToken resolves an application from its registration token and reports
// whether a member profile already references it (i.e. the token was
// redeemed). sql.ErrNoRows is returned when no application carries the token.
func (r *ApplicationRepo) GetByToken(ctx context.Context, token string) (model.Application, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.email, a.company, a.motivation, a.status,
		        a.reviewed_by, a.reviewed_at, a.token, a.token_expires_at, a.created_at,
		        EXISTS(SELECT 1 FROM member_profiles p WHERE p.application_id = a.id)
		 FROM applications a WHERE a.token=? LIMIT 1`, token)
	var (
		a          model.Application
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
		tok        sql.NullString
		tokExp     sql.NullTime
		hasProfile bool
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Company, &a.Motivation, &a.Status,
		&reviewedBy, &reviewedAt, &tok, &tokExp, &a.CreatedAt, &hasProfile)
	if err != nil {
		return model.Application{}, false, err
	}
	applyNullables(&a, reviewedBy, reviewedAt, tok, tokExp)
	return a, hasProfile, nil
}

// ApplicationListItem is the row shape returned to admins when listing
// applications. Registered indicates that an APPROVED application has been
// redeemed (a member profile references it).
type ApplicationListItem struct {
	ID             uint64     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Company        string     `json:"company"`
	Motivation     string     `json:"motivation"`
	Status         string     `json:"status"`
	ReviewedBy     *uint64    `json:"reviewed_by,omitempty"`
	ReviewerName   *string    `json:"reviewer_name,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	Registered     bool       `json:"registered"`
	CreatedAt      time.Time  `json:"created_at"`
}

// List returns applications newest-first. When status is non-empty only
// applications in that state are returned.
func (r *ApplicationRepo) List(ctx context.Context, status string) ([]ApplicationListItem, error) {
	q := `SELECT a.id, a.name, a.email, a.company, a.motivation, a.status,
	             a.reviewed_by, u.name, a.reviewed_at, a.token_expires_at,
	             EXISTS(SELECT 1 FROM member_profiles p WHERE p.application_id = a.id),
	             a.created_at
	      FROM applications a
	      LEFT JOIN users u ON u.id = a.reviewed_by`
	args := []interface{}{}
	if status != "" {
		q += " WHERE a.status = ?"
		args = append(args, status)
	}
	q += " ORDER BY a.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ApplicationListItem{}
	for rows.Next() {
		var (
			it           ApplicationListItem
			reviewedBy   sql.NullInt64
			reviewerName sql.NullString
			reviewedAt   sql.NullTime
			tokExp       sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Email, &it.Company, &it.Motivation, &it.Status,
			&reviewedBy, &reviewerName, &reviewedAt, &tokExp, &it.Registered, &it.CreatedAt); err != nil {
			return nil, err
		}
		if reviewedBy.Valid {
			v := uint64(reviewedBy.Int64)
			it.ReviewedBy = &v
		}
		if reviewerName.Valid {
			v := reviewerName.String
			it.ReviewerName = &v
		}
		if reviewedAt.Valid {
			v := reviewedAt.Time
			it.ReviewedAt = &v
		}
		if tokExp.Valid {
			v := tokExp.Time
			it.TokenExpiresAt = &v
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Approve transitions a PENDING application to APPROVED, storing the
// registration token, its expiry and the reviewer identity. The WHERE clause
// on status makes the decision atomic: when no row is updated the method
// distinguishes an unknown ID (sql.ErrNoRows) from a replayed decision
// (ErrAlreadyDecided) with a follow-up existence check.
func (r *ApplicationRepo) Approve(ctx context.Context, id, reviewerID uint64, token string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications
		 SET status='APPROVED', reviewed_by=?, reviewed_at=UTC_TIMESTAMP(), token=?, token_expires_at=?
		 WHERE id=? AND status='PENDING'`,
		reviewerID, token, expiresAt, id)
	if err != nil {
		return err
	}
	return r.decisionOutcome(ctx, res, id)
}

// Reject transitions a PENDING application to REJECTED, recording the
// reviewer identity and timestamp. No token is minted; the state is terminal.
func (r *ApplicationRepo) Reject(ctx context.Context, id, reviewerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications
		 SET status='REJECTED', reviewed_by=?, reviewed_at=UTC_TIMESTAMP()
		 WHERE id=? AND status='PENDING'`,
		reviewerID, id)
	if err != nil {
		return err
	}
	return r.decisionOutcome(ctx, res, id)
}

// decisionOutcome interprets the result of a conditional decision update.
func (r *ApplicationRepo) decisionOutcome(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var status string
	err = r.db.QueryRowContext(ctx,
		"SELECT status FROM applications WHERE id=? LIMIT 1", id).Scan(&status)
	if err != nil {
		return err // sql.ErrNoRows when the application does not exist
	}
	return ErrAlreadyDecided
}

// ClearTokenTx nulls the token and token expiry of an application within an
// existing transaction. Called as the final step of registration so that a
// redeemed token can never be presented again.
func (r *ApplicationRepo) ClearTokenTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE applications SET token=NULL, token_expires_at=NULL WHERE id=?", id)
	return err
}

// scanApplication reads a full application row including nullable columns.
func scanApplication(row *sql.Row) (model.Application, error) {
	var (
		a          model.Application
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
		tok        sql.NullString
		tokExp     sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Company, &a.Motivation, &a.Status,
		&reviewedBy, &reviewedAt, &tok, &tokExp, &a.CreatedAt)
	if err != nil {
		return model.Application{}, err
	}
	applyNullables(&a, reviewedBy, reviewedAt, tok, tokExp)
	return a, nil
}

func applyNullables(a *model.Application, reviewedBy sql.NullInt64, reviewedAt sql.NullTime, tok sql.NullString, tokExp sql.NullTime) {
	if reviewedBy.Valid {
		v := uint64(reviewedBy.Int64)
		a.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		v := reviewedAt.Time
		a.ReviewedAt = &v
	}
	if tok.Valid {
		v := tok.String
		a.Token = &v
	}
	if tokExp.Valid {
		v := tokExp.Time
		a.TokenExpiresAt = &v
	}
}
