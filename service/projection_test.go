package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSavingsProjection(t *testing.T) {
	today := time.Date(2024, 1, 1, 10, 30, 0, 0, time.Local) // 时分秒应被忽略

	p, err := ComputeSavingsProjection("买电脑", 1200, 200, "2024-02-01", today)
	require.NoError(t, err)
	assert.Empty(t, p.Message)

	assert.InDelta(t, 1000.0, p.AmountNeeded, 1e-9)
	assert.Equal(t, 31, p.DaysRemaining)
	assert.InDelta(t, 32.26, p.Daily, 0.01)
	assert.InDelta(t, 225.81, p.Weekly, 0.01)
	// monthly = needed / (days / 30.44)
	assert.InDelta(t, 1000/(31.0/30.44), p.Monthly, 0.01)
}

func TestComputeSavingsProjection_DeadlinePassed(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)

	// 截止日期在过去
	p, err := ComputeSavingsProjection("旅行", 1000, 0, "2024-01-01", today)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Message)
	assert.Contains(t, p.Message, "已过")

	// 截止日期就是今天
	p, err = ComputeSavingsProjection("旅行", 1000, 0, "2024-06-01", today)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Message)
	assert.Zero(t, p.Daily)
}

func TestComputeSavingsProjection_AlreadyReached(t *testing.T) {
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	// 已达成（current >= target），不应出现除零或负数储蓄额
	p, err := ComputeSavingsProjection("应急基金", 500, 800, "2024-12-31", today)
	require.NoError(t, err)
	assert.Contains(t, p.Message, "达成")
	assert.Zero(t, p.Daily)
	assert.Zero(t, p.Weekly)
	assert.Zero(t, p.Monthly)
}

func TestComputeSavingsProjection_InvalidDate(t *testing.T) {
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	_, err := ComputeSavingsProjection("x", 100, 0, "2024/01/01", today)
	assert.Error(t, err)
}

func TestSavingsProjectionFallbackText(t *testing.T) {
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	p, err := ComputeSavingsProjection("买电脑", 1200, 200, "2024-02-01", today)
	require.NoError(t, err)
	text := p.FallbackText()
	assert.Contains(t, text, "买电脑")
	assert.Contains(t, text, "32.26")
	assert.Contains(t, text, "225.81")

	// 有说明文字时兜底文案就是说明文字本身
	p, err = ComputeSavingsProjection("旅行", 100, 200, "2024-12-31", today)
	require.NoError(t, err)
	assert.Equal(t, p.Message, p.FallbackText())
}
