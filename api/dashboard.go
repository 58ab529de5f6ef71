package api

import (
	"strings"
	"time"

	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 总览处理器
type DashboardHandler struct{}

// NewDashboardHandler 创建总览处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// GoalProgress 目标进度
type GoalProgress struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	TargetDate    string  `json:"target_date"`
	Progress      float64 `json:"progress"` // current/target，不封顶，可超过 1
}

// DashboardResponse 总览响应
type DashboardResponse struct {
	TotalIncome  float64        `json:"total_income"`
	TotalExpense float64        `json:"total_expense"`
	Balance      float64        `json:"balance"` // income - expense
	Goals        []GoalProgress `json:"goals"`
}

// Get 获取总览数据
// @Summary 获取总览数据
// @Description 汇总当前用户的收入总额、支出总额、结余和各储蓄目标进度，可按月份筛选收支。
// @Description 进度比例不封顶，已存金额超过目标时会大于 100%。
// @Tags 总览
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-07)，不传则统计全部"
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month != "" {
		if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
			BadRequest(c, "月份格式错误，应为: 2024-07")
			return
		}
	}

	var transactions []models.Transaction
	if err := database.DB.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询流水失败"))
		return
	}

	var totalIncome, totalExpense float64
	for _, t := range transactions {
		if month != "" && !strings.HasPrefix(t.Date, month) {
			continue
		}
		switch t.Kind {
		case models.KindIncome:
			totalIncome += t.Amount
		case models.KindExpense:
			totalExpense += t.Amount
		}
	}

	var goals []models.Goal
	if err := database.DB.Where("user_id = ?", userID).Order("id DESC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询目标失败"))
		return
	}

	progress := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		ratio := 0.0
		if g.TargetAmount > 0 {
			ratio = g.CurrentAmount / g.TargetAmount
		}
		progress = append(progress, GoalProgress{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			TargetDate:    g.TargetDate,
			Progress:      ratio,
		})
	}

	Success(c, DashboardResponse{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome - totalExpense,
		Goals:        progress,
	})
}
