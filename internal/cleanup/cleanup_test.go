package cleanup

import (
	"database/sql"
	"testing"

	"marketplace-portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Service) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, NewService(gdb)
}

func TestDeleteListing_ReleasesStorageAndQueuesIndexDelete(t *testing.T) {
	db, mock, svc := setupService(t)
	defer db.Close()

	mock.ExpectBegin()
	// Sum of gallery sizes to give back to the broker
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(size_mb\\), 0\\) FROM `listing_images`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(12.5))
	mock.ExpectExec("DELETE FROM `listing_images`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `listings`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Storage counter release for the owning broker
	mock.ExpectExec("UPDATE `users` SET").
		WithArgs(12.5, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `delete_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	// The search document is removed through the queue, not left behind
	mock.ExpectExec("INSERT INTO `index_queue`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	listing := &models.Listing{ID: "lst-1", BrokerID: 9, Title: "old rejected house"}
	require.NoError(t, svc.deleteListing(listing))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepOrphanedImages_ReleasesBrokerStorage(t *testing.T) {
	db, mock, svc := setupService(t)
	defer db.Close()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `listing_images`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectBegin()
	// Orphaned storage is attributed through the delete log
	mock.ExpectQuery("SELECT delete_logs.broker_id, COALESCE\\(SUM\\(listing_images.size_mb\\), 0\\) FROM `listing_images`").
		WillReturnRows(sqlmock.NewRows([]string{"broker_id", "total"}).AddRow(9, 3.5))
	mock.ExpectExec("UPDATE `users` SET").
		WithArgs(3.5, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `listing_images`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	count, err := svc.sweepOrphanedImages(false)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepOrphanedImages_DryRun(t *testing.T) {
	db, mock, svc := setupService(t)
	defer db.Close()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `listing_images`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := svc.sweepOrphanedImages(true)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
