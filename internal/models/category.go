package models

import "time"

// Category is a listing category. Kind, when set, pins the normalized
// category key explicitly; otherwise the key is inferred from Name by the
// schema resolver's keyword table.
type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Kind      string    `gorm:"type:varchar(30)" json:"kind,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
