package database

import (
	"errors"

	"marketplace-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FindOpenDuplicateInquiry looks for an open inquiry from the same contact
// (phone or email) to the same broker. Used for duplicate suppression: no
// locking is taken, so two near-simultaneous identical submissions may both
// pass the check — an accepted business-policy race, not a guarantee.
func (gdb *GormDB) FindOpenDuplicateInquiry(brokerID uint, phone, email string) (*models.Inquiry, error) {
	q := gdb.db.Where("broker_id = ? AND status = ?", brokerID, models.InquiryStatusOpen)

	switch {
	case phone != "" && email != "":
		q = q.Where("client_phone = ? OR client_email = ?", phone, email)
	case phone != "":
		q = q.Where("client_phone = ?", phone)
	case email != "":
		q = q.Where("client_email = ?", email)
	default:
		return nil, nil
	}

	var inquiry models.Inquiry
	err := q.First(&inquiry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// CreateInquiry stores a new inquiry
func (gdb *GormDB) CreateInquiry(inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusOpen
	}
	return gdb.db.Create(inquiry).Error
}

// ListInquiries returns inquiries, optionally filtered by status and broker
func (gdb *GormDB) ListInquiries(status models.InquiryStatus, brokerID *uint, limit int) ([]models.Inquiry, error) {
	q := gdb.db.Model(&models.Inquiry{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if brokerID != nil {
		q = q.Where("broker_id = ?", *brokerID)
	}
	if limit <= 0 {
		limit = 50
	}

	var inquiries []models.Inquiry
	err := q.Order("created_at DESC").Limit(limit).Find(&inquiries).Error
	return inquiries, err
}

// GetInquiryByID fetches one inquiry
func (gdb *GormDB) GetInquiryByID(id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := gdb.db.Where("id = ?", id).First(&inquiry).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// CloseInquiry marks an inquiry handled
func (gdb *GormDB) CloseInquiry(id string) error {
	result := gdb.db.Model(&models.Inquiry{}).
		Where("id = ?", id).
		Update("status", models.InquiryStatusClosed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
