package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"smartbudget/config"
	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"
	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// 提示词里带的最近流水条数
const recentTransactionLimit = 5

// AdvisorHandler AI理财助手处理器
type AdvisorHandler struct {
	advisor *service.AdvisorService
}

// NewAdvisorHandler 创建AI理财助手处理器
func NewAdvisorHandler(cfg *config.Config) *AdvisorHandler {
	return &AdvisorHandler{
		advisor: service.NewAdvisorService(&cfg.AI),
	}
}

// AskRequest AI提问请求
type AskRequest struct {
	Message string `json:"message" binding:"required,min=1" example:"这个月我还能花多少钱？"`
	Month   string `json:"month" example:"2024-07"` // 预算上下文月份，缺省为当月
}

// AskResponse AI回答响应
type AskResponse struct {
	Reply string `json:"reply"`
}

// Ask 向AI理财助手提问
// @Summary 向AI理财助手提问
// @Description 把当前用户的储蓄目标、指定月份的预算执行汇总和最近 5 笔流水组装进提示词，
// @Description 连同用户的问题一次性发给 AI，同步等待回复。
// @Description AI 额度用尽或密钥无效时返回固定的提示文案（仍算成功）；其他故障原样报错。不做重试。
// @Tags AI助手
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AskRequest true "提问内容"
// @Success 200 {object} Response{data=AskResponse} "回答成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 502 {object} Response "AI服务错误"
// @Router /api/v1/advisor/ask [post]
func (h *AdvisorHandler) Ask(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	month := req.Month
	if month == "" {
		month = time.Now().Format("2006-01")
	} else if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-07")
		return
	}

	systemPrompt, err := h.buildSystemPrompt(userID, middleware.GetCurrentUsername(c), month)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "组装上下文失败"))
		return
	}

	reply, err := h.advisor.Chat(c.Request.Context(), systemPrompt, req.Message)
	if err != nil {
		if err == service.ErrAIUnavailable {
			reply = service.AIUnavailableReply
		} else {
			BadGateway(c, SafeErrorMessage(err, "AI服务错误"))
			return
		}
	}

	// 保存问答记录，保存失败不影响回复
	msg := models.AdviceMessage{
		UserID:   userID,
		UserText: req.Message,
		AIText:   reply,
	}
	_ = database.DB.Create(&msg).Error

	Success(c, AskResponse{Reply: reply})
}

// buildSystemPrompt 组装系统提示词：用户名、当前日期、目标、预算汇总、最近流水
// 上下文规模有上界：目标和预算逐条列出（单用户量级很小），流水只取最近 5 笔
func (h *AdvisorHandler) buildSystemPrompt(userID uint, username, month string) (string, error) {
	var goals []models.Goal
	if err := database.DB.Where("user_id = ?", userID).Order("id DESC").Find(&goals).Error; err != nil {
		return "", err
	}

	var budgets []models.Budget
	if err := database.DB.
		Where("user_id = ? AND month = ?", userID, month).
		Order("id ASC").
		Find(&budgets).Error; err != nil {
		return "", err
	}

	var allTransactions []models.Transaction
	if err := database.DB.Where("user_id = ?", userID).Find(&allTransactions).Error; err != nil {
		return "", err
	}
	summaries := buildBudgetSummaries(budgets, allTransactions, month)

	var recent []models.Transaction
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(recentTransactionLimit).
		Find(&recent).Error; err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("你是一个友好、专业的个人理财助手，回答要简洁、可执行，适合聊天界面阅读。\n")
	fmt.Fprintf(&sb, "用户名：%s\n", username)
	fmt.Fprintf(&sb, "今天日期：%s\n", time.Now().Format("2006-01-02"))

	if len(goals) > 0 {
		sb.WriteString("\n用户当前的储蓄目标：\n")
		for _, g := range goals {
			fmt.Fprintf(&sb, "- 目标：%s，目标金额：%.2f 元，已存：%.2f 元，截止：%s\n",
				g.Name, g.TargetAmount, g.CurrentAmount, g.TargetDate)
		}
	}
	if len(summaries) > 0 {
		fmt.Fprintf(&sb, "\n用户 %s 月份的预算执行情况：\n", month)
		for _, s := range summaries {
			fmt.Fprintf(&sb, "- 类别：%s，预算：%.2f 元，已花：%.2f 元，剩余：%.2f 元\n",
				s.Category, s.AllocatedAmount, s.SpentAmount, s.RemainingAmount)
		}
	}
	if len(recent) > 0 {
		fmt.Fprintf(&sb, "\n用户最近的 %d 笔流水：\n", len(recent))
		for _, t := range recent {
			kind := "支出"
			if t.Kind == models.KindIncome {
				kind = "收入"
			}
			fmt.Fprintf(&sb, "- %s：%s（%s）%.2f 元 [类别：%s]\n",
				t.Date, t.Description, kind, t.Amount, t.Category)
		}
	}

	return sb.String(), nil
}

// History 获取AI问答记录
// @Summary 获取AI问答记录
// @Description 分页获取当前用户的AI问答记录，最新在前
// @Tags AI助手
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.AdviceMessage}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/advisor/history [get]
func (h *AdvisorHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	page := 1
	pageSize := 20
	if p := c.Query("page"); p != "" {
		if v, e := strconv.Atoi(p); e == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, e := strconv.Atoi(ps); e == nil && v > 0 {
			pageSize = v
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := database.DB.Model(&models.AdviceMessage{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var list []models.AdviceMessage
	offset := (page - 1) * pageSize
	if err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     list,
	})
}

// DeleteHistory 删除一条AI问答记录
// @Summary 删除AI问答记录
// @Description 删除当前用户的一条AI问答记录，属于他人或不存在时返回 404
// @Tags AI助手
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在或无权操作"
// @Router /api/v1/advisor/history/{id} [delete]
func (h *AdvisorHandler) DeleteHistory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var msg models.AdviceMessage
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&msg).Error; err != nil {
		NotFound(c, "记录不存在或无权操作")
		return
	}

	if err := database.DB.Delete(&msg).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
