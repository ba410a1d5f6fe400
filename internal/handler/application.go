package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
	"github.com/FabioHAraujo/ag-sistemas/internal/middleware"
	"github.com/FabioHAraujo/ag-sistemas/internal/model"
	"github.com/FabioHAraujo/ag-sistemas/internal/queue"
	"github.com/FabioHAraujo/ag-sistemas/internal/repository"
	queue_publisher "github.com/FabioHAraujo/ag-sistemas/internal/service"
	"github.com/FabioHAraujo/ag-sistemas/internal/utils"
	"github.com/FabioHAraujo/ag-sistemas/internal/validator"
)

// ApplicationHandler bundles dependencies for the application intake and
// admin review endpoints. Submit is public; List, Approve and Reject sit
// behind JWT + ADMIN role middleware.
type ApplicationHandler struct {
	Cfg  config.Config
	Apps *repository.ApplicationRepo
}

func NewApplicationHandler(cfg config.Config, apps *repository.ApplicationRepo) *ApplicationHandler {
	return &ApplicationHandler{Cfg: cfg, Apps: apps}
}

// ----- DTOs -----

type submitReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Motivation string `json:"motivation"`
}

type applicationPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Submit handles POST /v1/applications. It validates the candidate's
// submission, refuses duplicates while a PENDING application exists for the
// email, and persists a new PENDING application.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if problems := validator.Application(req.Name, req.Email, req.Company, req.Motivation); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data", "details": problems})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Apps.Create(ctx, strings.TrimSpace(req.Name), req.Email, strings.TrimSpace(req.Company), strings.TrimSpace(req.Motivation))
	if err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a pending application already exists for this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create application failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"application": applicationPart{ID: id, Name: strings.TrimSpace(req.Name), Email: req.Email},
	})
}

// List handles GET /v1/applications. Admins see all applications newest
// first; the optional ?status= query narrows to one state.
func (h *ApplicationHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Apps.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list applications failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": items})
}

// Approve handles POST /v1/applications/:id/approve. It mints the
// registration token, flips the application to APPROVED exactly once, and
// dispatches the invite notification carrying the token-bearing link. The
// notification is best-effort; a broker outage never fails the approval.
func (h *ApplicationHandler) Approve(c echo.Context) error {
	reviewerID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	token, err := utils.NewRegistrationToken(h.Cfg.RegTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Apps.Approve(ctx, id, reviewerID, token.Raw, token.Exp); err != nil {
		return decisionError(c, err)
	}
	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load application failed"})
	}

	link := h.Cfg.AppURL + "/register?token=" + token.Raw
	_ = queue_publisher.PublishApplicationApproved(ctx, queue.ApplicationApprovedEvent{
		ApplicationID:    app.ID,
		Name:             app.Name,
		Email:            app.Email,
		Company:          app.Company,
		RegistrationLink: link,
		TokenExpiresAt:   token.Exp.Format(time.RFC3339),
		ApprovedBy:       reviewerID,
		ApprovedAt:       time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":           "application approved",
		"application":       decisionView(app),
		"registration_link": link,
	})
}

// Reject handles POST /v1/applications/:id/reject. Terminal: no token is
// minted and the application can never be decided again.
func (h *ApplicationHandler) Reject(c echo.Context) error {
	reviewerID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Apps.Reject(ctx, id, reviewerID); err != nil {
		return decisionError(c, err)
	}
	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load application failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "application rejected",
		"application": decisionView(app),
	})
}

// decisionError maps repository failures of approve/reject to HTTP responses.
func decisionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	case errors.Is(err, repository.ErrAlreadyDecided):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application already processed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// decisionView shapes an application record for decision responses. The
// registration token itself is never echoed back here; it only travels in
// the registration link of an approval.
func decisionView(app model.Application) echo.Map {
	v := echo.Map{
		"id":      app.ID,
		"name":    app.Name,
		"email":   app.Email,
		"company": app.Company,
		"status":  app.Status,
	}
	if app.ReviewedBy != nil {
		v["reviewed_by"] = *app.ReviewedBy
	}
	if app.ReviewedAt != nil {
		v["reviewed_at"] = app.ReviewedAt.UTC().Format(time.RFC3339)
	}
	if app.TokenExpiresAt != nil {
		v["token_expires_at"] = app.TokenExpiresAt.UTC().Format(time.RFC3339)
	}
	return v
}
