package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabioHAraujo/ag-sistemas/internal/middleware"
	"github.com/FabioHAraujo/ag-sistemas/internal/repository"
)

func sqlErr1062() error {
	return errors.New("Error 1062 (23000): Duplicate entry")
}

func newAppHandler(t *testing.T) (*ApplicationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApplicationHandler(testCfg, repository.NewApplicationRepo(db)), mock
}

const validMotivation = "I would like to join the group to exchange referrals and grow my company network."

func TestSubmitCreatesPendingApplication(t *testing.T) {
	h, mock := newAppHandler(t)

	mock.ExpectQuery("SELECT EXISTS.+FROM applications").
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(7, 1))

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications",
		`{"name":"Jane Doe","email":"jane@x.com","company":"Acme","motivation":"`+validMotivation+`"}`)
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	app := decodeBody(t, rec)["application"].(map[string]interface{})
	assert.Equal(t, float64(7), app["id"])
	assert.Equal(t, "Jane Doe", app["name"])
	assert.Equal(t, "jane@x.com", app["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitValidation(t *testing.T) {
	h, _ := newAppHandler(t)

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications",
		`{"name":"J","email":"nope","company":"","motivation":"short"}`)
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := decodeBody(t, rec)["details"].(map[string]interface{})
	for _, f := range []string{"name", "email", "company", "motivation"} {
		assert.Contains(t, details, f)
	}
}

func TestSubmitDuplicatePending(t *testing.T) {
	h, mock := newAppHandler(t)

	mock.ExpectQuery("SELECT EXISTS.+FROM applications").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications",
		`{"name":"Jane Doe","email":"jane@x.com","company":"Acme","motivation":"`+validMotivation+`"}`)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "pending application")
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	h, _ := newAppHandler(t)

	c, rec := jsonRequest(t, http.MethodGet, "/v1/applications?status=BOGUS", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiltersByStatus(t *testing.T) {
	h, mock := newAppHandler(t)

	now := time.Now().UTC()
	cols := []string{
		"id", "name", "email", "company", "motivation", "status",
		"reviewed_by", "reviewer_name", "reviewed_at", "token_expires_at", "registered", "created_at",
	}
	mock.ExpectQuery("FROM applications a").
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, "Jane Doe", "jane@x.com", "Acme", validMotivation, "PENDING",
				nil, nil, nil, nil, false, now))

	c, rec := jsonRequest(t, http.MethodGet, "/v1/applications?status=pending", "")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	apps := decodeBody(t, rec)["applications"].([]interface{})
	require.Len(t, apps, 1)
	assert.Equal(t, "PENDING", apps[0].(map[string]interface{})["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveNotFound(t *testing.T) {
	h, mock := newAppHandler(t)

	mock.ExpectExec("UPDATE applications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM applications").
		WillReturnError(sql.ErrNoRows)

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications/99/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	c.Set(middleware.CtxUserID, uint64(1))
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveAlreadyProcessed(t *testing.T) {
	h, mock := newAppHandler(t)

	mock.ExpectExec("UPDATE applications").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM applications").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("REJECTED"))

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications/5/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set(middleware.CtxUserID, uint64(1))
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application already processed", decodeBody(t, rec)["error"])
}

func TestRejectRecordsReviewer(t *testing.T) {
	h, mock := newAppHandler(t)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE applications").
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	cols := []string{
		"id", "name", "email", "company", "motivation", "status",
		"reviewed_by", "reviewed_at", "token", "token_expires_at", "created_at",
	}
	mock.ExpectQuery("SELECT .+ FROM applications WHERE id=").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, "Jane Doe", "jane@x.com", "Acme", validMotivation, "REJECTED",
				1, now, nil, nil, now))

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications/5/reject", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set(middleware.CtxUserID, uint64(1))
	require.NoError(t, h.Reject(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	app := decodeBody(t, rec)["application"].(map[string]interface{})
	assert.Equal(t, "REJECTED", app["status"])
	assert.Equal(t, float64(1), app["reviewed_by"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveMintsTokenAndLink(t *testing.T) {
	h, mock := newAppHandler(t)
	now := time.Now().UTC()
	exp := now.Add(7 * 24 * time.Hour)

	mock.ExpectExec("UPDATE applications").
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	cols := []string{
		"id", "name", "email", "company", "motivation", "status",
		"reviewed_by", "reviewed_at", "token", "token_expires_at", "created_at",
	}
	mock.ExpectQuery("SELECT .+ FROM applications WHERE id=").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, "Jane Doe", "jane@x.com", "Acme", validMotivation, "APPROVED",
				1, now, "sometoken", exp, now))

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications/5/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set(middleware.CtxUserID, uint64(1))
	require.NoError(t, h.Approve(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Contains(t, body["registration_link"], testCfg.AppURL+"/register?token=")
	app := body["application"].(map[string]interface{})
	assert.Equal(t, "APPROVED", app["status"])
	assert.Contains(t, app, "token_expires_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveMissingIdentity(t *testing.T) {
	h, _ := newAppHandler(t)

	c, rec := jsonRequest(t, http.MethodPost, "/v1/applications/5/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
