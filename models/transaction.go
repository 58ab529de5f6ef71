package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// KindIncome 收入
	KindIncome = "income"
	// KindExpense 支出
	KindExpense = "expense"
)

// Transaction 交易流水模型
// 流水只增不改：创建后没有任何更新/删除接口
// 日期固定存 "YYYY-MM-DD" 字符串，按前缀即可做月份筛选
type Transaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Description string         `json:"description" gorm:"size:255;not null"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date        string         `json:"date" gorm:"size:10;index;not null"` // 格式: 2024-07-15
	Category    string         `json:"category" gorm:"size:50;index;not null"`
	Kind        string         `json:"kind" gorm:"size:10;not null"` // income / expense
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
