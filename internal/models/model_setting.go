package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a runtime key/value toggle editable by admins, e.g. whether
// the explore page is enabled.
type Setting struct {
	ID          string         `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Key         string         `gorm:"column:key;type:varchar(128);not null;uniqueIndex:unique_setting_key" json:"key"`
	Value       datatypes.JSON `gorm:"column:value;type:jsonb;not null" json:"value"`
	Description string         `gorm:"column:description;type:varchar(256)" json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Setting) TableName() string { return "setting" }
