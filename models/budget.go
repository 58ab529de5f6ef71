package models

import (
	"time"

	"gorm.io/gorm"
)

// Budget 月度预算模型
// (user_id, category, month) 唯一，重复设置同一键只覆盖金额（upsert）
type Budget struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"uniqueIndex:uk_user_category_month;index:idx_user_month;not null"`
	Category        string         `json:"category" gorm:"size:50;uniqueIndex:uk_user_category_month;not null"`
	Month           string         `json:"month" gorm:"size:7;uniqueIndex:uk_user_category_month;index:idx_user_month;not null"` // 格式: 2024-07
	AllocatedAmount float64        `json:"allocated_amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// BudgetSummary 预算汇总（读取时计算，不落库）
type BudgetSummary struct {
	Budget
	SpentAmount     float64 `json:"spent_amount"`
	RemainingAmount float64 `json:"remaining_amount"` // allocated - spent，可为负
}
