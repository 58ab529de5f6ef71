package service

import (
	"fmt"
	"math"
	"time"
)

// 平均每月天数，月供测算用
const avgDaysPerMonth = 30.44

// SavingsProjection 储蓄进度测算结果
// Message 非空表示无需测算（目标已过期或已达成），数值字段此时无意义
type SavingsProjection struct {
	GoalName      string  `json:"goal_name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	TargetDate    string  `json:"target_date"`
	AmountNeeded  float64 `json:"amount_needed"`
	DaysRemaining int     `json:"days_remaining"`
	Daily         float64 `json:"daily"`
	Weekly        float64 `json:"weekly"`
	Monthly       float64 `json:"monthly"`
	Message       string  `json:"message,omitempty"`
}

// ComputeSavingsProjection 计算达成储蓄目标所需的日/周/月储蓄额
// 纯函数，today 显式传入便于测试
func ComputeSavingsProjection(goalName string, targetAmount, currentAmount float64, targetDate string, today time.Time) (*SavingsProjection, error) {
	deadline, err := time.ParseInLocation("2006-01-02", targetDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("目标日期格式错误，应为: 2006-01-02")
	}

	p := &SavingsProjection{
		GoalName:      goalName,
		TargetAmount:  targetAmount,
		CurrentAmount: currentAmount,
		TargetDate:    targetDate,
	}

	// 按自然日比较，忽略时分秒
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	// 先判过期再判达成，与达成/过期同时满足时的提示语优先级保持一致
	if !deadline.After(today) {
		p.Message = fmt.Sprintf("目标「%s」的截止日期（%s）已过或就是今天，请设置一个未来日期后再测算储蓄计划。", goalName, targetDate)
		return p, nil
	}

	p.AmountNeeded = targetAmount - currentAmount
	if p.AmountNeeded <= 0 {
		p.Message = fmt.Sprintf("恭喜！目标「%s」已经达成！", goalName)
		return p, nil
	}

	// deadline > today 保证 days >= 1，不会除零
	days := int(math.Ceil(deadline.Sub(today).Hours() / 24))
	p.DaysRemaining = days
	p.Daily = p.AmountNeeded / float64(days)
	p.Weekly = p.AmountNeeded / (float64(days) / 7)
	p.Monthly = p.AmountNeeded / (float64(days) / avgDaysPerMonth)

	return p, nil
}

// FallbackText AI不可用时的兜底文案，数值与AI版内容一致
func (p *SavingsProjection) FallbackText() string {
	if p.Message != "" {
		return p.Message
	}
	return fmt.Sprintf("要在 %s 前攒够「%s」的 %.2f 元，你可以这样储蓄：\n• 每天 %.2f 元\n• 每周 %.2f 元\n• 每月 %.2f 元\n\n提示：配置 AI 密钥后可获得更详细的储蓄建议。",
		p.TargetDate, p.GoalName, p.TargetAmount, p.Daily, p.Weekly, p.Monthly)
}

// PromptText 交给AI润色的提示词，数字已算好，AI只负责组织语言
func (p *SavingsProjection) PromptText(username string) string {
	return fmt.Sprintf(`用户 %s 想为目标「%s」存钱。
还需储蓄 %.2f 元，截止日期 %s（距今 %d 天）。

请基于以下算好的数字，给出简洁、鼓励性的储蓄计划：
每日: %.2f 元
每周: %.2f 元
每月: %.2f 元`,
		username, p.GoalName, p.AmountNeeded, p.TargetDate, p.DaysRemaining,
		p.Daily, p.Weekly, p.Monthly)
}
