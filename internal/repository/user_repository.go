package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/FabioHAraujo/ag-sistemas/internal/model"
	"github.com/FabioHAraujo/ag-sistemas/internal/utils"
)

// UserRepo provides persistence for user accounts. Email uniqueness is
// enforced by the database; duplicate-key failures surface as ErrEmailExists.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span multiple repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

const userColumns = "id, email, password_hash, name, role, status, created_at, updated_at"

// Create hashes the password and inserts a user, returning its ID. Used by
// the admin provisioning command; registration uses CreateTx instead.
func (r *UserRepo) Create(ctx context.Context, email, password, name, role string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	return r.insert(ctx, r.db.ExecContext, email, hash, name, role, model.StatusActive)
}

// CreateTx inserts a user with a precomputed password hash inside an
// existing transaction. Registration hashes before opening the transaction
// to keep bcrypt work outside of it.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, passwordHash, name, role, status string) (uint64, error) {
	return r.insert(ctx, tx.ExecContext, email, passwordHash, name, role, status)
}

type execFunc func(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

func (r *UserRepo) insert(ctx context.Context, exec execFunc, email, hash, name, role, status string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := exec(ctx,
		"INSERT INTO users (email, password_hash, name, role, status) VALUES (?,?,?,?,?)",
		email, hash, name, role, status)
	if err != nil {
		// MySQL duplicate-key error on the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// EmailExists reports whether any user already holds the given email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email=?)", email).Scan(&exists)
	return exists, err
}
