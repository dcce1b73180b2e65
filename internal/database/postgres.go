package database

import (
	"database/sql"
	"fmt"

	"marketplace-portal/internal/models"

	_ "github.com/lib/pq"
)

// DB is the raw-SQL PostgreSQL fallback used when MySQL/GORM is not
// configured. It covers the public read path and basic listing writes;
// quota enforcement, history and the index queue require MySQL/GORM.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the listings tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR(36) PRIMARY KEY,
		broker_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		category_key VARCHAR(30) NOT NULL,
		type VARCHAR(10) NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		price DECIMAL(14, 2) NOT NULL,

		location VARCHAR(255),
		location_province VARCHAR(100),
		location_district VARCHAR(100),
		location_sector VARCHAR(100),

		attributes JSONB NOT NULL DEFAULT '{}',
		primary_image_url TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'active',

		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS listing_images (
		id BIGSERIAL PRIMARY KEY,
		listing_id VARCHAR(36) NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		size_mb DECIMAL(10, 2) NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Indexes for the public browse filters
	CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_listings_category_key ON listings(category_key);
	CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(type);
	CREATE INDEX IF NOT EXISTS idx_listings_broker ON listings(broker_id);
	CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location);
	`
	_, err := db.conn.Exec(query)
	return err
}

const listingColumns = `id, broker_id, category_id, category_key, type, title, description, price,
	   location, location_province, location_district, location_sector,
	   attributes, primary_image_url, status, created_at, updated_at`

func scanListing(row interface{ Scan(...interface{}) error }) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.BrokerID, &l.CategoryID, &l.CategoryKey, &l.Type, &l.Title, &l.Description, &l.Price,
		&l.Location, &l.LocationProvince, &l.LocationDistrict, &l.LocationSector,
		&l.Attributes, &l.PrimaryImageURL, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveListing upserts a listing by id
func (db *DB) SaveListing(l *models.Listing) error {
	query := `
	INSERT INTO listings (
		id, broker_id, category_id, category_key, type, title, description, price,
		location, location_province, location_district, location_sector,
		attributes, primary_image_url, status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		category_id = EXCLUDED.category_id,
		category_key = EXCLUDED.category_key,
		type = EXCLUDED.type,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		location = EXCLUDED.location,
		location_province = EXCLUDED.location_province,
		location_district = EXCLUDED.location_district,
		location_sector = EXCLUDED.location_sector,
		attributes = EXCLUDED.attributes,
		primary_image_url = EXCLUDED.primary_image_url,
		status = EXCLUDED.status,
		updated_at = NOW()
	`
	_, err := db.conn.Exec(query,
		l.ID, l.BrokerID, l.CategoryID, l.CategoryKey, l.Type, l.Title, l.Description, l.Price,
		l.Location, l.LocationProvince, l.LocationDistrict, l.LocationSector,
		l.Attributes, l.PrimaryImageURL, l.Status)
	return err
}

// GetAllListings retrieves all listings, newest first
func (db *DB) GetAllListings() ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// GetListingByID retrieves a listing by id
func (db *DB) GetListingByID(id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(db.conn.QueryRow(query, id))
}

// GetListingImages returns a listing's gallery ordered by sort_order
func (db *DB) GetListingImages(listingID string) ([]models.ListingImage, error) {
	query := `
		SELECT id, listing_id, image_url, size_mb, sort_order, created_at, updated_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := db.conn.Query(query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ListingImage
	for rows.Next() {
		var img models.ListingImage
		err := rows.Scan(&img.ID, &img.ListingID, &img.ImageURL, &img.SizeMB,
			&img.SortOrder, &img.CreatedAt, &img.UpdatedAt)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

// DeleteListing hard-deletes a listing; image rows go with it via the
// ON DELETE CASCADE foreign key
func (db *DB) DeleteListing(id string) error {
	result, err := db.conn.Exec(`DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
