package models

import "time"

type User struct {
	ID           string    `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name         string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Email        string    `gorm:"column:email;type:varchar(256);not null;uniqueIndex:unique_user_email" json:"email"`
	Phone        string    `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(16);not null;default:'user'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "app_user" }
