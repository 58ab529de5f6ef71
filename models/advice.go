package models

import (
	"time"

	"gorm.io/gorm"
)

// AdviceMessage AI理财问答记录（单轮：用户提问 + AI回复）
type AdviceMessage struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	UserText  string         `json:"user_text" gorm:"type:text;not null"`
	AIText    string         `json:"ai_text" gorm:"type:longtext;not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (AdviceMessage) TableName() string {
	return "advice_messages"
}
