package model

import (
	"errors"
	"time"
)

// DefaultCurrency 客户默认币种
const DefaultCurrency = "EUR"

// ClientModel 客户数据模型
type ClientModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Currency  string    `gorm:"type:char(3);not null;default:'EUR'" json:"currency"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ClientModel) TableName() string {
	return "clients"
}

// Validate 验证客户模型
func (cm *ClientModel) Validate() error {
	if cm.Name == "" {
		return errors.New("client name is required")
	}
	if len(cm.Currency) != 3 {
		return errors.New("client currency must be a three letter code")
	}
	return nil
}
