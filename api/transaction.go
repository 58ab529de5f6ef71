package api

import (
	"time"

	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 交易流水处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易流水处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 记账请求
type CreateTransactionRequest struct {
	Description string  `json:"description" binding:"required,max=255" example:"午餐"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"35.50"`
	Date        string  `json:"date" binding:"required" example:"2024-07-15"`
	Category    string  `json:"category" binding:"required,max=50" example:"餐饮"`
	Kind        string  `json:"kind" binding:"required,oneof=income expense" example:"expense"`
}

// TransactionListRequest 流水列表请求
type TransactionListRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"10"`
	Category string `form:"category" example:"餐饮"`
	Kind     string `form:"kind" example:"expense"`
	Month    string `form:"month" example:"2024-07"` // 按日期前缀匹配月份
}

// Create 记录一笔交易
// @Summary 记录一笔交易
// @Description 记录一笔收入或支出。流水创建后不可修改、不可删除。
// @Description 当记录的是收入且金额大于 0 时，当前用户的每一个储蓄目标的已存金额都会全额增加该笔收入
// @Description （每个目标各加一次完整金额，不做拆分，这是产品既定行为）。
// @Description 流水插入与目标累加在同一个数据库事务中完成，要么全部生效要么全部回滚。
// @Tags 交易流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "记录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 日期固定格式，后续按字符串前缀做月份筛选
	if _, err := time.ParseInLocation("2006-01-02", req.Date, time.Local); err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-07-15")
		return
	}

	transaction := models.Transaction{
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Kind:        req.Kind,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		// 收入全额累加到该用户的每一个储蓄目标
		if req.Kind == models.KindIncome && req.Amount > 0 {
			if err := tx.Model(&models.Goal{}).
				Where("user_id = ?", userID).
				Update("current_amount", gorm.Expr("current_amount + ?", req.Amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "记录交易失败"))
		return
	}

	SuccessWithMessage(c, "记录成功", transaction)
}

// List 获取交易流水列表
// @Summary 获取交易流水列表
// @Description 获取当前用户的交易流水，支持按类别、收支类型、月份筛选，按创建时间倒序返回。
// @Description 月份筛选是对日期字符串的前缀匹配："2024-07-15" 只会出现在 month=2024-07 的查询结果里。
// @Tags 交易流水
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Param kind query string false "收支类型筛选 (income/expense)"
// @Param month query string false "月份筛选 (2024-07)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Kind != "" {
		if req.Kind != models.KindIncome && req.Kind != models.KindExpense {
			BadRequest(c, "kind 只能为 income 或 expense")
			return
		}
		query = query.Where("kind = ?", req.Kind)
	}
	if req.Month != "" {
		if _, err := time.ParseInLocation("2006-01", req.Month, time.Local); err != nil {
			BadRequest(c, "月份格式错误，应为: 2024-07")
			return
		}
		// 日期为定宽零填充字符串，前缀匹配即按月筛选
		query = query.Where("date LIKE ?", req.Month+"%")
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 按创建顺序倒序（最新在前）
	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("id DESC").Offset(offset).Limit(req.PageSize).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     transactions,
	})
}

// GetCategories 获取当前用户用过的交易类别
// @Summary 获取交易类别列表
// @Description 获取当前用户交易流水中出现过的所有类别（去重）
// @Tags 交易流水
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions/categories [get]
func (h *TransactionHandler) GetCategories(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []string
	if err := database.DB.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, categories)
}
