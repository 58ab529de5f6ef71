package router

import (
	"time"

	"smartbudget/api"
	"smartbudget/config"
	_ "smartbudget/docs"
	"smartbudget/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 交易流水
			transactionHandler := api.NewTransactionHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/categories", transactionHandler.GetCategories)
			}

			// 预算
			budgetHandler := api.NewBudgetHandler()
			budgets := authorized.Group("/budgets")
			{
				budgets.PUT("", budgetHandler.Set)
				budgets.GET("", budgetHandler.List)
				budgets.GET("/summary", budgetHandler.Summary)
				budgets.GET("/filters", budgetHandler.Filters)
			}

			// 储蓄目标
			goalHandler := api.NewGoalHandler(cfg)
			goals := authorized.Group("/goals")
			{
				goals.POST("", goalHandler.Create)
				goals.GET("", goalHandler.List)
				goals.PUT("/:id", goalHandler.Update)
				goals.DELETE("/:id", goalHandler.Delete)
				goals.GET("/:id/projection", goalHandler.Projection)
			}

			// 总览
			dashboardHandler := api.NewDashboardHandler()
			authorized.GET("/dashboard", dashboardHandler.Get)

			// AI理财助手
			advisorHandler := api.NewAdvisorHandler(cfg)
			advisor := authorized.Group("/advisor")
			{
				advisor.POST("/ask", advisorHandler.Ask)
				advisor.GET("/history", advisorHandler.History)
				advisor.DELETE("/history/:id", advisorHandler.DeleteHistory)
			}

			// 导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
