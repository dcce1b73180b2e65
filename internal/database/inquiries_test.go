package database

import (
	"database/sql"
	"testing"
	"time"

	"marketplace-portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *GormDB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, NewGormDBFromDB(gdb)
}

func inquiryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "broker_id", "listing_id", "client_name", "client_phone",
		"client_email", "details", "status", "created_at", "updated_at",
	})
}

func TestFindOpenDuplicateInquiry_PhoneMatch(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := inquiryRows().
		AddRow("inq-1", 7, nil, "Alice", "+250788000001", "", "still open", "open", now, now)

	mock.ExpectQuery("SELECT (.+) FROM `inquiries`").
		WillReturnRows(rows)

	inquiry, err := gdb.FindOpenDuplicateInquiry(7, "+250788000001", "")
	require.NoError(t, err)
	require.NotNil(t, inquiry)
	assert.Equal(t, "inq-1", inquiry.ID)
	assert.Equal(t, models.InquiryStatusOpen, inquiry.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOpenDuplicateInquiry_NoMatchIsNilNil(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM `inquiries`").
		WillReturnRows(inquiryRows())

	inquiry, err := gdb.FindOpenDuplicateInquiry(7, "+250788000002", "")
	require.NoError(t, err)
	assert.Nil(t, inquiry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOpenDuplicateInquiry_NoContactSkipsQuery(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	// No phone and no email: nothing to match on, no query issued
	inquiry, err := gdb.FindOpenDuplicateInquiry(7, "", "")
	require.NoError(t, err)
	assert.Nil(t, inquiry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInquiry_AssignsIDAndStatus(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `inquiries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	inquiry := &models.Inquiry{
		BrokerID:    7,
		ClientPhone: "+250788000001",
		Details:     "interested in the Remera house",
	}
	require.NoError(t, gdb.CreateInquiry(inquiry))

	assert.NotEmpty(t, inquiry.ID)
	assert.Equal(t, models.InquiryStatusOpen, inquiry.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseInquiry(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `inquiries` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, gdb.CloseInquiry("inq-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseInquiry_NotFound(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `inquiries` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := gdb.CloseInquiry("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
