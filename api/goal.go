package api

import (
	"strconv"
	"time"

	"smartbudget/config"
	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// GoalHandler 储蓄目标处理器
type GoalHandler struct {
	advisor *service.AdvisorService
}

// NewGoalHandler 创建储蓄目标处理器
func NewGoalHandler(cfg *config.Config) *GoalHandler {
	return &GoalHandler{
		advisor: service.NewAdvisorService(&cfg.AI),
	}
}

// CreateGoalRequest 创建储蓄目标请求
type CreateGoalRequest struct {
	Name          string  `json:"name" binding:"required,max=100" example:"买电脑"`
	TargetAmount  float64 `json:"target_amount" binding:"required,gt=0" example:"8000"`
	CurrentAmount float64 `json:"current_amount" binding:"gte=0" example:"1200"`
	TargetDate    string  `json:"target_date" binding:"required" example:"2025-06-30"`
	Description   string  `json:"description" binding:"max=255" example:"攒钱换一台新笔记本"`
}

// UpdateGoalRequest 更新储蓄目标请求（只更新传了的字段）
type UpdateGoalRequest struct {
	Name          *string  `json:"name" binding:"omitempty,max=100"`
	TargetAmount  *float64 `json:"target_amount" binding:"omitempty,gt=0"`
	CurrentAmount *float64 `json:"current_amount" binding:"omitempty,gte=0"`
	TargetDate    *string  `json:"target_date"`
	Description   *string  `json:"description" binding:"omitempty,max=255"`
}

// ProjectionResponse 储蓄计划测算响应
type ProjectionResponse struct {
	Text       string                     `json:"text"`
	Projection *service.SavingsProjection `json:"projection"`
}

// fetchOwnedGoal 取出目标并校验归属
// 记录不存在和不属于当前用户返回同一个错误提示，不泄露他人记录是否存在
func fetchOwnedGoal(c *gin.Context, userID uint) (*models.Goal, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return nil, false
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		NotFound(c, "目标不存在或无权操作")
		return nil, false
	}
	return &goal, true
}

// Create 创建储蓄目标
// @Summary 创建储蓄目标
// @Description 创建一个新的储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "目标信息"
// @Success 200 {object} Response{data=models.Goal} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if _, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local); err != nil {
		BadRequest(c, "目标日期格式错误，应为: 2025-06-30")
		return
	}

	goal := models.Goal{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		Description:   req.Description,
	}

	if err := database.DB.Create(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建目标失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", goal)
}

// List 获取储蓄目标列表
// @Summary 获取储蓄目标列表
// @Description 获取当前用户的所有储蓄目标，最新创建的在前
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Goal} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var goals []models.Goal
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, goals)
}

// Update 更新储蓄目标
// @Summary 更新储蓄目标
// @Description 更新指定的储蓄目标，只更新请求里出现的字段。先取记录校验归属，
// @Description 记录属于他人或不存在时返回 404 且不做任何修改。
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body UpdateGoalRequest true "目标信息"
// @Success 200 {object} Response{data=models.Goal} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "目标不存在或无权操作"
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	goal, ok := fetchOwnedGoal(c, userID)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.TargetAmount != nil {
		updates["target_amount"] = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		updates["current_amount"] = *req.CurrentAmount
	}
	if req.TargetDate != nil {
		if _, err := time.ParseInLocation("2006-01-02", *req.TargetDate, time.Local); err != nil {
			BadRequest(c, "目标日期格式错误，应为: 2025-06-30")
			return
		}
		updates["target_date"] = *req.TargetDate
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := database.DB.Model(goal).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录
	database.DB.First(goal, goal.ID)
	SuccessWithMessage(c, "更新成功", goal)
}

// Delete 删除储蓄目标
// @Summary 删除储蓄目标
// @Description 删除指定的储蓄目标。先取记录校验归属，属于他人或不存在时返回 404。
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "目标不存在或无权操作"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	goal, ok := fetchOwnedGoal(c, userID)
	if !ok {
		return
	}

	if err := database.DB.Delete(goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Projection 储蓄计划测算
// @Summary 储蓄计划测算
// @Description 计算达成目标所需的日/周/月储蓄额，并由 AI 组织成文字建议。
// @Description 目标已过期或已达成时返回固定说明文字；AI 额度/密钥故障时返回含相同数字的本地兜底文案。
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response{data=ProjectionResponse} "测算成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "目标不存在或无权操作"
// @Failure 502 {object} Response "AI服务错误"
// @Router /api/v1/goals/{id}/projection [get]
func (h *GoalHandler) Projection(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	goal, ok := fetchOwnedGoal(c, userID)
	if !ok {
		return
	}

	projection, err := service.ComputeSavingsProjection(
		goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, time.Now())
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	// 已过期/已达成：直接返回说明文字，不调用AI
	if projection.Message != "" {
		Success(c, ProjectionResponse{Text: projection.Message, Projection: projection})
		return
	}

	username := middleware.GetCurrentUsername(c)
	text, err := h.advisor.Chat(c.Request.Context(),
		"你是一个专业的理财助手。请基于用户目标的测算数字，给出简洁的储蓄计划建议。",
		projection.PromptText(username))
	if err != nil {
		if err == service.ErrAIUnavailable {
			// 配额/密钥故障：本地兜底文案，数字完整
			Success(c, ProjectionResponse{Text: projection.FallbackText(), Projection: projection})
			return
		}
		BadGateway(c, SafeErrorMessage(err, "AI服务错误"))
		return
	}

	Success(c, ProjectionResponse{Text: text, Projection: projection})
}
