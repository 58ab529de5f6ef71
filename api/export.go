package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"smartbudget/database"
	"smartbudget/middleware"
	"smartbudget/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// fetchExportTransactions 取当前用户的流水，month 为空导出全部
func fetchExportTransactions(c *gin.Context) ([]models.Transaction, string, bool) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	query := database.DB.Where("user_id = ?", userID)
	if month != "" {
		if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
			BadRequest(c, "月份格式错误，应为: 2024-07")
			return nil, "", false
		}
		query = query.Where("date LIKE ?", month+"%")
	}

	var transactions []models.Transaction
	if err := query.Order("id DESC").Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, "", false
	}
	if month == "" {
		month = "all"
	}
	return transactions, month, true
}

func kindLabel(kind string) string {
	if kind == models.KindIncome {
		return "收入"
	}
	return "支出"
}

// ExportCSV 导出交易流水为 CSV
// @Summary 导出交易流水为 CSV
// @Description 导出当前用户的交易流水为 CSV 文件，可按月份筛选
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-07)，不传则导出全部"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	transactions, month, ok := fetchExportTransactions(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "日期", "描述", "类别", "收支", "金额"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, t := range transactions {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Date,
			t.Description,
			t.Category,
			kindLabel(t.Kind),
			fmt.Sprintf("%.2f", t.Amount),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易流水为 JSON
// @Summary 导出交易流水为 JSON
// @Description 导出当前用户的交易流水为 JSON，可按月份筛选
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-07)，不传则导出全部"
// @Success 200 {object} Response{data=[]models.Transaction} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	transactions, _, ok := fetchExportTransactions(c)
	if !ok {
		return
	}
	Success(c, transactions)
}

// ExportExcel 导出交易流水为 Excel
// @Summary 导出交易流水为 Excel
// @Description 导出当前用户的交易流水为 xlsx 文件，含收入/支出合计行，可按月份筛选
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-07)，不传则导出全部"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	transactions, month, ok := fetchExportTransactions(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "交易流水"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 14)

	headers := []string{"ID", "日期", "描述", "类别", "收支", "金额"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalIncome, totalExpense float64
	for i, t := range transactions {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), t.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), kindLabel(t.Kind))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Amount)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)

		if t.Kind == models.KindIncome {
			totalIncome += t.Amount
		} else {
			totalExpense += t.Amount
		}
	}

	// 汇总行
	summaryRow := len(transactions) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow),
		fmt.Sprintf("收入 %.2f", totalIncome))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow),
		fmt.Sprintf("支出 %.2f", totalExpense))
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", summaryRow), totalIncome-totalExpense)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("transactions_%s.xlsx", month)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
