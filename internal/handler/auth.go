package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
	"github.com/FabioHAraujo/ag-sistemas/internal/middleware"
	"github.com/FabioHAraujo/ag-sistemas/internal/model"
	"github.com/FabioHAraujo/ag-sistemas/internal/repository"
	"github.com/FabioHAraujo/ag-sistemas/internal/utils"
	"github.com/FabioHAraujo/ag-sistemas/internal/validator"
)

// AuthHandler bundles dependencies for registration and session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Apps     *repository.ApplicationRepo
	Profiles *repository.ProfileRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, a *repository.ApplicationRepo, p *repository.ProfileRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Apps: a, Profiles: p}
}

// ----- DTOs -----

type registerReq struct {
	Token              string `json:"token"`
	Password           string `json:"password"`
	Phone              string `json:"phone"`
	Position           string `json:"position"`
	CompanyDescription string `json:"company_description"`
	ExpertiseArea      string `json:"expertise_area"`
	LinkedinURL        string `json:"linkedin_url"`
	WebsiteURL         string `json:"website_url"`
	Bio                string `json:"bio"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResp struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// Register handles POST /v1/auth/register: it redeems an approved
// application's registration token into a member account. Checks run in a
// fixed fail-fast order: token resolves, token unused, application approved,
// token unexpired, email free, password strong. Passing all of them triggers
// one transaction creating the user and profile and clearing the token; the
// unique keys on users.email and member_profiles.application_id make
// concurrent redemptions leave exactly one winner.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app, hasProfile, err := h.Apps.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if hasProfile {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token already used"})
	}
	if app.Status != model.ApplicationApproved {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application not approved"})
	}
	if app.TokenExpiresAt == nil || !app.TokenExpiresAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token expired"})
	}
	taken, err := h.Users.EmailExists(ctx, app.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if taken {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	}
	if msg := validator.Password(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data", "details": map[string]string{"password": msg}})
	}
	if problems := validator.RegistrationProfile(req.LinkedinURL, req.WebsiteURL); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data", "details": problems})
	}

	// Hash before opening the transaction to keep bcrypt work outside it.
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	uid, err := h.Users.CreateTx(ctx, tx, app.Email, hash, app.Name, model.RoleMember, model.StatusActive)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	profile := model.MemberProfile{
		UserID:             uid,
		ApplicationID:      app.ID,
		Phone:              optional(req.Phone),
		Position:           optional(req.Position),
		Company:            optional(app.Company),
		CompanyDescription: optional(req.CompanyDescription),
		ExpertiseArea:      optional(req.ExpertiseArea),
		LinkedinURL:        optional(req.LinkedinURL),
		WebsiteURL:         optional(req.WebsiteURL),
		Bio:                optional(req.Bio),
	}
	if err := h.Profiles.CreateTx(ctx, tx, &profile); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "token already used"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	if err := h.Apps.ClearTokenTx(ctx, tx, app.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalidate token failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, app.Email, model.RoleMember, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	h.setSessionCookie(c, session)

	return c.JSON(http.StatusOK, authResp{
		User:  userPart{ID: uid, Email: app.Email, Name: app.Name, Role: model.RoleMember},
		Token: session.Token,
	})
}

// Login handles POST /v1/auth/login. Unknown email and wrong password are
// indistinguishable to the caller; only a correct password against a
// non-ACTIVE account yields the distinct 403.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.EmailValid(req.Email) || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if u.Status != model.StatusActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account inactive or suspended"})
	}

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	h.setSessionCookie(c, session)

	return c.JSON(http.StatusOK, authResp{
		User:  userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Token: session.Token,
	})
}

// Logout handles POST /v1/auth/logout by expiring the session cookie. The
// JWT itself stays valid until its exp; there is no server-side session
// state to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me handles GET /v1/auth/me (protected). It re-reads the user row so the
// response reflects the current account, not the claims frozen in the token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":         u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"role":       u.Role,
			"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// setSessionCookie stores the session JWT as an HttpOnly, SameSite=Lax
// cookie scoped to the whole site, Secure outside of dev.
func (h *AuthHandler) setSessionCookie(c echo.Context, session utils.SessionToken) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Exp,
		MaxAge:   h.Cfg.SessionTTLHours * 3600,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) secureCookies() bool {
	return h.Cfg.Env == "prod"
}

// optional converts an empty form value to a NULL column.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
