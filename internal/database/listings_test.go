package database

import (
	"testing"
	"time"

	"marketplace-portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func listingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "broker_id", "category_id", "category_key", "type", "title",
		"description", "price", "location", "location_province",
		"location_district", "location_sector", "attributes",
		"primary_image_url", "status", "created_at", "updated_at",
	})
}

func TestGetListingByID(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := listingRows().AddRow(
		"lst-1", 7, 1, "house", "sell", "Remera family house",
		"", 85000000.0, "Rwanda, Kigali City, Gasabo, Remera", "Kigali City",
		"Gasabo", "Remera", []byte(`{"bedrooms":"4","bathrooms":"3","area_sqm":"220"}`),
		"/uploads/a.jpg", "active", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM `listings`").
		WillReturnRows(rows)

	listing, err := gdb.GetListingByID("lst-1")
	require.NoError(t, err)
	assert.Equal(t, "Remera family house", listing.Title)
	assert.Equal(t, "house", listing.CategoryKey)
	assert.Equal(t, "4", listing.Attributes["bedrooms"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListingByID_NotFound(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM `listings`").
		WillReturnRows(listingRows())

	_, err := gdb.GetListingByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListingsWithFilters(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `listings`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM `listings`").
		WillReturnRows(listingRows().AddRow(
			"lst-1", 7, 1, "house", "rent", "Kimironko apartment",
			"", 450000.0, "Rwanda, Kigali City, Gasabo, Kimironko", "Kigali City",
			"Gasabo", "Kimironko", []byte(`{"rent_period":"monthly"}`),
			"", "active", now, now,
		))

	minPrice := 100000.0
	result, err := gdb.GetListingsWithFilters(ListingFilters{
		CategoryKey: "house",
		Type:        "rent",
		MinPrice:    &minPrice,
		Status:      "active",
		SortBy:      "price_asc",
		Limit:       10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "monthly", result.Items[0].Attributes["rent_period"])
	assert.Equal(t, 10, result.Limit)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListingWithImages_QuotaItemsExceeded(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	// Broker lookup
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quota_items", "quota_storage_mb", "storage_used_mb"}).
			AddRow(7, 2, 500.0, 0.0))
	// Broker already holds quota_items listings
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `listings`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	listing := &models.Listing{BrokerID: 7, CategoryKey: "house", Type: models.TransactionSell, Title: "x", Price: 1}
	err := gdb.CreateListingWithImages(listing, nil)
	assert.ErrorIs(t, err, ErrQuotaItemsExceeded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListingWithImages_StorageQuotaExceeded(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quota_items", "quota_storage_mb", "storage_used_mb"}).
			AddRow(7, 50, 500.0, 499.0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `listings`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	// Conditional UPDATE matches no row when the reservation would overflow
	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	listing := &models.Listing{BrokerID: 7, CategoryKey: "house", Type: models.TransactionSell, Title: "x", Price: 1}
	images := []models.ListingImage{{ImageURL: "/uploads/a.jpg", SizeMB: 5.0}}
	err := gdb.CreateListingWithImages(listing, images)
	assert.ErrorIs(t, err, ErrQuotaStorageExceeded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListing_CascadesAndLogs(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `listings`").
		WillReturnRows(listingRows().AddRow(
			"lst-1", 7, 1, "house", "sell", "Remera family house",
			"", 85000000.0, "Rwanda, Kigali City, Gasabo, Remera", "Kigali City",
			"Gasabo", "Remera", []byte(`{}`), "/uploads/a.jpg", "active", now, now,
		))
	// Sum of gallery sizes to release
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(size_mb\\), 0\\) FROM `listing_images`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(12.5))
	mock.ExpectExec("DELETE FROM `listing_images`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `listings`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `delete_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `index_queue`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := gdb.DeleteListing("lst-1", models.DeleteReasonOwner)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListing_NotFound(t *testing.T) {
	db, mock, gdb := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `listings`").
		WillReturnRows(listingRows())
	mock.ExpectRollback()

	err := gdb.DeleteListing("missing", models.DeleteReasonOwner)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
