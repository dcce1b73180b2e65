package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-portal/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupInquiryHandler(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	h := NewInquiryHandler(database.NewGormDBFromDB(gdb))
	r := gin.New()
	r.POST("/api/inquiries", h.Submit)
	return db, mock, r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitInquiry_Created(t *testing.T) {
	db, mock, r := setupInquiryHandler(t)
	defer db.Close()

	// Dedup check finds nothing
	mock.ExpectQuery("SELECT (.+) FROM `inquiries`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `inquiries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := postJSON(t, r, "/api/inquiries", gin.H{
		"broker_id":    7,
		"client_name":  "Alice",
		"client_phone": "+250788000001",
		"details":      "interested in the Remera house",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "received", body["status"])
	assert.NotEmpty(t, body["inquiry_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitInquiry_DuplicateAcknowledged(t *testing.T) {
	db, mock, r := setupInquiryHandler(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "broker_id", "listing_id", "client_name", "client_phone",
		"client_email", "details", "status", "created_at", "updated_at",
	}).AddRow("inq-1", 7, nil, "Alice", "+250788000001", "", "earlier inquiry", "open", now, now)

	mock.ExpectQuery("SELECT (.+) FROM `inquiries`").
		WillReturnRows(rows)
	// No insert follows

	w := postJSON(t, r, "/api/inquiries", gin.H{
		"broker_id":    7,
		"client_name":  "Alice",
		"client_phone": "+250788000001",
		"details":      "asking again",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "already_received", body["status"])
	assert.Equal(t, "inq-1", body["inquiry_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitInquiry_RequiresContact(t *testing.T) {
	db, mock, r := setupInquiryHandler(t)
	defer db.Close()

	w := postJSON(t, r, "/api/inquiries", gin.H{
		"broker_id":   7,
		"client_name": "Alice",
		"details":     "no way to reach me",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitInquiry_RequiresBrokerOrListing(t *testing.T) {
	db, mock, r := setupInquiryHandler(t)
	defer db.Close()

	w := postJSON(t, r, "/api/inquiries", gin.H{
		"client_phone": "+250788000001",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
