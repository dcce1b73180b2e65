package models

import "time"

// Role constants
const (
	RoleAdmin  = "admin"
	RoleBroker = "broker"
	RoleUser   = "user"
)

// BrokerStatus represents the admin approval state of a broker account
type BrokerStatus string

const (
	BrokerStatusPending  BrokerStatus = "pending"
	BrokerStatusApproved BrokerStatus = "approved"
	BrokerStatusRejected BrokerStatus = "rejected"
)

// User is an account. Brokers are users with role=broker plus an approval
// status, quota counters and a home location. Password handling and sessions
// live in the external auth layer; this service only stores the hash column.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(255)" json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`

	BrokerStatus *BrokerStatus `gorm:"type:varchar(20);index" json:"broker_status,omitempty"`

	// Home location. Rwanda brokers carry province/district/sector,
	// DRC brokers carry city and/or territory under a DRC province.
	Country        string `gorm:"type:varchar(10)" json:"country,omitempty"`
	BrokerProvince *uint  `json:"broker_province,omitempty"`
	BrokerDistrict *uint  `json:"broker_district,omitempty"`
	BrokerSector   *uint  `json:"broker_sector,omitempty"`
	CityID         *uint  `json:"city_id,omitempty"`
	TerritoryID    *uint  `json:"territory_id,omitempty"`

	// Advisory quotas. storage_used_mb is only ever moved by conditional
	// UPDATEs inside the listing/image transactions.
	QuotaItems     int     `gorm:"not null;default:50" json:"quota_items"`
	QuotaStorageMB float64 `gorm:"column:quota_storage_mb;type:decimal(10,2);not null;default:500" json:"quota_storage_mb"`
	StorageUsedMB  float64 `gorm:"column:storage_used_mb;type:decimal(10,2);not null;default:0" json:"storage_used_mb"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsApprovedBroker reports whether the user may publish listings
func (u *User) IsApprovedBroker() bool {
	return u.Role == RoleBroker && u.BrokerStatus != nil && *u.BrokerStatus == BrokerStatusApproved
}
