package api

import (
	"errors"
	"sort"
	"strings"
	"time"

	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// SetBudgetRequest 设置预算请求
type SetBudgetRequest struct {
	Category        string  `json:"category" binding:"required,max=50" example:"餐饮"`
	Month           string  `json:"month" binding:"required" example:"2024-07"`
	AllocatedAmount float64 `json:"allocated_amount" binding:"required,gt=0" example:"1500"`
}

// BudgetFiltersResponse 预算筛选项（用过的类别和月份）
type BudgetFiltersResponse struct {
	Categories []string `json:"categories"` // 升序
	Months     []string `json:"months"`     // 降序（新月份在前）
}

// Set 设置月度预算（upsert）
// @Summary 设置月度预算
// @Description 按 (类别, 月份) 设置预算金额。同一用户同一类别同一月份只有一行：
// @Description 已存在则只覆盖金额（类别和月份不可变），不存在则新建。重复调用幂等，以最后一次金额为准。
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [put]
func (h *BudgetHandler) Set(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if _, err := time.ParseInLocation("2006-01", req.Month, time.Local); err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-07")
		return
	}

	// 按唯一键 (user_id, category, month) 查找后写入
	// 数据库上的唯一索引兜底并发下的重复插入
	var budget models.Budget
	err := database.DB.
		Where("user_id = ? AND category = ? AND month = ?", userID, req.Category, req.Month).
		First(&budget).Error

	switch {
	case err == nil:
		// 已存在：只覆盖金额
		if err := database.DB.Model(&budget).Update("allocated_amount", req.AllocatedAmount).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新预算失败"))
			return
		}
		budget.AllocatedAmount = req.AllocatedAmount
		SuccessWithMessage(c, "更新成功", budget)

	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.Budget{
			UserID:          userID,
			Category:        req.Category,
			Month:           req.Month,
			AllocatedAmount: req.AllocatedAmount,
		}
		if err := database.DB.Create(&budget).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "创建预算失败"))
			return
		}
		SuccessWithMessage(c, "创建成功", budget)

	default:
		InternalError(c, SafeErrorMessage(err, "查询预算失败"))
	}
}

// List 获取某月的预算列表
// @Summary 获取某月的预算列表
// @Description 获取当前用户指定月份的所有预算行
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query string true "月份 (2024-07)"
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		BadRequest(c, "缺少 month 参数")
		return
	}
	if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-07")
		return
	}

	var budgets []models.Budget
	if err := database.DB.
		Where("user_id = ? AND month = ?", userID, month).
		Order("id ASC").
		Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, budgets)
}

// Summary 获取某月的预算执行汇总
// @Summary 获取某月的预算执行汇总
// @Description 对指定月份的每条预算，汇总同类别同月份的支出流水，返回已花金额和剩余金额（可为负）。
// @Description 返回顺序跟随预算行的存储顺序，调用方不应依赖排序。
// @Description 只有设过预算的类别会出现在结果里，未设预算的支出请走流水查询接口。
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query string true "月份 (2024-07)"
// @Success 200 {object} Response{data=[]models.BudgetSummary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/summary [get]
func (h *BudgetHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		BadRequest(c, "缺少 month 参数")
		return
	}
	if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-07")
		return
	}

	var budgets []models.Budget
	if err := database.DB.
		Where("user_id = ? AND month = ?", userID, month).
		Order("id ASC").
		Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询预算失败"))
		return
	}

	var transactions []models.Transaction
	if err := database.DB.
		Where("user_id = ?", userID).
		Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询流水失败"))
		return
	}

	summaries := buildBudgetSummaries(budgets, transactions, month)
	Success(c, summaries)
}

// buildBudgetSummaries 预算-流水汇总
// 过滤出该月支出流水后按类别求和，remaining = allocated - spent（可为负）
func buildBudgetSummaries(budgets []models.Budget, transactions []models.Transaction, month string) []models.BudgetSummary {
	spentByCategory := make(map[string]float64)
	for _, t := range transactions {
		if t.Kind != models.KindExpense {
			continue
		}
		if !strings.HasPrefix(t.Date, month) {
			continue
		}
		spentByCategory[t.Category] += t.Amount
	}

	summaries := make([]models.BudgetSummary, 0, len(budgets))
	for _, b := range budgets {
		spent := spentByCategory[b.Category]
		summaries = append(summaries, models.BudgetSummary{
			Budget:          b,
			SpentAmount:     spent,
			RemainingAmount: b.AllocatedAmount - spent,
		})
	}
	return summaries
}

// Filters 获取预算筛选项
// @Summary 获取预算筛选项
// @Description 获取当前用户设置过预算的所有类别（升序）和月份（降序）
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=BudgetFiltersResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/filters [get]
func (h *BudgetHandler) Filters(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.
		Select("category", "month").
		Where("user_id = ?", userID).
		Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	categorySet := make(map[string]struct{})
	monthSet := make(map[string]struct{})
	for _, b := range budgets {
		categorySet[b.Category] = struct{}{}
		monthSet[b.Month] = struct{}{}
	}

	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	// 新月份在前
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	Success(c, BudgetFiltersResponse{
		Categories: categories,
		Months:     months,
	})
}
