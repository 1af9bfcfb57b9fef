package app

import (
	"testroom_backend/docs"
	"testroom_backend/internal/config"
	"testroom_backend/internal/middleware"
	"testroom_backend/internal/model"
	"testroom_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 所有角色通用
		authGroup.GET("/me", c.auth.Me)
		authGroup.POST("/change-password", c.auth.ChangePassword)
		authGroup.PUT("/profile", c.user.UpdateProfile)
		authGroup.POST("/profile/avatar", c.user.UploadAvatar)

		// 成绩单：学生导出本人的，教师/管理员导出本组织的，归属校验在服务层
		authGroup.GET("/attempts/:id/report", c.report.Result)
		authGroup.POST("/attempts/:id/report/archive", c.report.Archive)

		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
		a.registerSuperAdminRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/tests", c.test.StudentList)
		student.GET("/tests/:id", c.test.StudentView)
		student.POST("/tests/:id/attempt", c.attempt.Start)

		student.GET("/attempts/:id", c.attempt.Get)
		student.PUT("/attempts/:id/answers", c.attempt.SaveAnswers)
		student.POST("/attempts/:id/complete", c.attempt.Complete)

		student.GET("/history", c.dashboard.StudentHistory)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	// 管理员拥有全部教师权限
	teacher := rg.Group("/tests")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("", c.test.Create)
		teacher.GET("", c.test.List)
		teacher.GET("/:id", c.test.Get)
		teacher.PUT("/:id", c.test.Update)
		teacher.POST("/:id/publish", c.test.Publish)

		teacher.POST("/:id/questions", c.test.AddQuestion)
		teacher.POST("/:id/questions/batch", c.test.AddQuestions)
		teacher.PUT("/:id/questions/:qid", c.test.UpdateQuestion)
		teacher.DELETE("/:id/questions/:qid", c.test.DeleteQuestion)

		teacher.GET("/:id/attempts", c.attempt.ListByTest)
		teacher.GET("/:id/stats", c.dashboard.TestStats)
		teacher.GET("/:id/summary", c.report.Summary)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/users", c.user.Create)
		admin.GET("/users", c.user.List)
		admin.PATCH("/users/:id/status", c.user.SetStatus)
		admin.DELETE("/users/:id", c.user.Delete)

		admin.GET("/dashboard", c.dashboard.AdminStats)
	}
}

func (a *App) registerSuperAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	superadmin := rg.Group("/superadmin")
	superadmin.Use(middleware.RoleMiddleware(model.SuperAdmin))
	{
		superadmin.POST("/organizations", c.organization.Create)
		superadmin.GET("/organizations", c.organization.List)
		superadmin.GET("/organizations/:id", c.organization.Get)
		superadmin.PATCH("/organizations/:id/status", c.organization.SetStatus)
		superadmin.DELETE("/organizations/:id", c.organization.Delete)
	}
}
