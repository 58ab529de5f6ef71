package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal 储蓄目标模型
// current_amount 有两条变更路径：用户直接编辑，或记录收入流水时自动全额累加
type Goal struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"size:100;not null"`
	TargetAmount  float64        `json:"target_amount" gorm:"type:decimal(10,2);not null"`
	CurrentAmount float64        `json:"current_amount" gorm:"type:decimal(10,2);not null;default:0"`
	TargetDate    string         `json:"target_date" gorm:"size:10;not null"` // 格式: 2025-06-30
	Description   string         `json:"description" gorm:"size:255"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	User          User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Goal) TableName() string {
	return "goals"
}
