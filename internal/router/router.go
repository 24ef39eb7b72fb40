package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/config"
	"github.com/stemsi/faculty-backend/internal/handler"
	"github.com/stemsi/faculty-backend/internal/metrics"
	"github.com/stemsi/faculty-backend/internal/middleware"
	"github.com/stemsi/faculty-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Stats       *handler.StatsHandler
	Event       *handler.EventHandler
	Attendance  *handler.AttendanceHandler
	Assignments *handler.DocumentHandler
	Notes       *handler.DocumentHandler
	Syllabus    *handler.SyllabusHandler
	Student     *handler.StudentHandler
	Download    *handler.DownloadHandler
	Health      *handler.HealthHandler
}

// SetupRouter configures all routes with their middlewares. uploadLimiter
// guards the upload POSTs and may be nil.
func SetupRouter(
	handlers *Handlers,
	cfg *config.Config,
	uploadLimiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the logger and every envelope carry it.
	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.BodyLimit(cfg.MaxUploadBytes),
	)

	// Files and the workbook are streamed as-is.
	router.Use(middleware.Brotli("/download/", "/metrics", "/attendance_records/export"))

	upload := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if uploadLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{uploadLimiter.Middleware(), h}
	}

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ─── Dashboard & Aggregations ──────────────────────────────────────
	stats := router.Group("/")
	stats.Use(middleware.CacheControl(middleware.NoStore))
	{
		stats.GET("/", handlers.Stats.Dashboard)
		stats.GET("/get_attendance_chart_data", handlers.Stats.AttendanceChart)
		stats.GET("/syllabus_progress", handlers.Stats.SyllabusProgress)
		stats.GET("/attendance_stats", handlers.Stats.AttendanceStats)
	}

	// ─── Calendar ──────────────────────────────────────────────────────
	router.GET("/calendar", handlers.Event.Calendar)
	router.POST("/add_event", handlers.Event.AddEvent)
	router.GET("/edit_event/:id", handlers.Event.GetEvent)
	router.POST("/edit_event/:id", handlers.Event.EditEvent)
	router.GET("/delete_event/:id", handlers.Event.DeleteEvent)

	// ─── Attendance ────────────────────────────────────────────────────
	router.GET("/attendance", handlers.Attendance.Rosters)
	router.POST("/attendance", handlers.Attendance.RecordSheet)
	router.GET("/attendance_records", handlers.Attendance.Records)
	router.GET("/attendance_records/export", handlers.Attendance.Export)
	router.GET("/edit_attendance/:id", handlers.Attendance.GetRecord)
	router.POST("/edit_attendance/:id", handlers.Attendance.EditRecord)
	router.GET("/delete_attendance/:id", handlers.Attendance.DeleteRecord)

	// ─── Assignments & Notes (multipart uploads) ───────────────────────
	router.GET("/assignments", handlers.Assignments.List)
	router.POST("/assignments", upload(handlers.Assignments.Upload)...)
	router.GET("/edit_assignment/:id", handlers.Assignments.Get)
	router.POST("/edit_assignment/:id", handlers.Assignments.Edit)
	router.GET("/delete_assignment/:id", handlers.Assignments.Delete)

	router.GET("/notes", handlers.Notes.List)
	router.POST("/notes", upload(handlers.Notes.Upload)...)
	router.GET("/edit_note/:id", handlers.Notes.Get)
	router.POST("/edit_note/:id", handlers.Notes.Edit)
	router.GET("/delete_note/:id", handlers.Notes.Delete)

	router.GET("/download/:filename", middleware.CacheControl(middleware.NoCache), handlers.Download.Download)

	// ─── Syllabus ──────────────────────────────────────────────────────
	router.GET("/syllabus_tracker", handlers.Syllabus.Tracker)
	router.POST("/update_syllabus", handlers.Syllabus.UpdateTopic)
	router.GET("/init_syllabus", handlers.Syllabus.Init)
	router.POST("/add_syllabus_topic", handlers.Syllabus.AddTopic)
	router.GET("/delete_syllabus/:id", handlers.Syllabus.DeleteTopic)

	// ─── Students & Marks ──────────────────────────────────────────────
	router.GET("/students", handlers.Student.ListStudents)
	router.POST("/add_student", handlers.Student.AddStudent)
	router.GET("/edit_student/:id", handlers.Student.GetStudent)
	router.POST("/edit_student/:id", handlers.Student.EditStudent)
	router.GET("/delete_student/:id", handlers.Student.DeleteStudent)
	router.GET("/student_marks/:id", handlers.Student.Marks)
	router.POST("/update_marks/:id", handlers.Student.UpdateMarks)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrRouteMissing)
	})

	return router
}
