package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/handler"
	"github.com/noah-isme/ruwad-api/internal/middleware"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/service"
	"github.com/noah-isme/ruwad-api/pkg/config"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	StudentHandler    *handler.StudentHandler
	BehaviorHandler   *handler.BehaviorHandler
	TeacherHandler    *handler.TeacherHandler
	StatisticsHandler *handler.StatisticsHandler
	ReportHandler     *handler.ReportHandler
	HealthHandler     *handler.HealthHandler

	Resolver middleware.TokenResolver
	Policy   *service.AccessPolicy
	Audit    middleware.AuditRecorder
	Logger   *zap.Logger
}

// Register wires the HTTP routes into the gin engine.
func Register(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/ready", deps.HealthHandler.Ready)
	r.GET("/metrics", deps.HealthHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/register", deps.AuthHandler.Register)
	auth.POST("/login", deps.AuthHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Resolver))
	secured.GET("/auth/me", deps.AuthHandler.Me)

	can := func(op service.Operation) gin.HandlerFunc {
		return middleware.Authorize(deps.Policy, op)
	}
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, deps.Logger, action, resource)
	}

	students := secured.Group("/students")
	students.GET("", can(service.OpStudentRead), deps.StudentHandler.List)
	students.POST("", can(service.OpStudentCreate), deps.StudentHandler.Create)
	students.POST("/import", can(service.OpStudentImport), deps.StudentHandler.Import)
	students.GET("/deleted", can(service.OpStudentListDeleted), deps.StudentHandler.Deleted)
	students.POST("/restore", can(service.OpStudentRestore), audit(models.AuditActionStudentRestore, "student"), deps.StudentHandler.Restore)
	students.POST("/undo", can(service.OpStudentUndo), audit(models.AuditActionStudentRestore, "student"), deps.StudentHandler.Undo)
	students.GET("/:id", can(service.OpStudentRead), deps.StudentHandler.Get)
	students.PUT("/:id", can(service.OpStudentUpdate), deps.StudentHandler.Update)
	students.DELETE("/:id", can(service.OpStudentDelete), audit(models.AuditActionStudentDelete, "student"), deps.StudentHandler.Delete)

	behaviors := secured.Group("/behaviors")
	behaviors.GET("", can(service.OpBehaviorRead), deps.BehaviorHandler.List)
	behaviors.POST("", can(service.OpBehaviorRecord), deps.BehaviorHandler.Record)
	behaviors.DELETE("/clear", can(service.OpBehaviorClear), audit(models.AuditActionBehaviorClear, "behavior"), deps.BehaviorHandler.Clear)

	teachers := secured.Group("/teachers")
	teachers.GET("", can(service.OpTeacherRead), deps.TeacherHandler.List)
	teachers.POST("", can(service.OpTeacherCreate), deps.TeacherHandler.Create)
	teachers.DELETE("/clear-fake", can(service.OpTeacherClearFake), audit(models.AuditActionTeacherClearFake, "teacher"), deps.TeacherHandler.ClearFake)

	statistics := secured.Group("/statistics")
	statistics.GET("/dashboard", can(service.OpStatisticsRead), deps.StatisticsHandler.Dashboard)
	statistics.DELETE("/clear", can(service.OpStatisticsReset), audit(models.AuditActionStatisticsReset, "statistics"), deps.StatisticsHandler.Clear)

	secured.GET("/reports/behavior", can(service.OpReportRead), deps.ReportHandler.Behavior)
}
