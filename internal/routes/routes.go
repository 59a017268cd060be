package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/handlers"
	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, service *booking.Service) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db)
	specializationHandler := handlers.NewSpecializationHandler(db)
	directoryHandler := handlers.NewDoctorDirectoryHandler(db, service)
	appointmentHandler := handlers.NewAppointmentHandler(db, service)
	availabilityHandler := handlers.NewAvailabilityHandler(db, service)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Doctor directory and specialization listing, for browsing
		// before booking. Open to every authenticated role.
		private.GET("/specializations", specializationHandler.ListSpecializations)
		private.GET("/doctors", directoryHandler.ListDoctors)
		private.GET("/doctors/:id", directoryHandler.GetDoctor)

		// Admin-only management surface
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.GET("/dashboard", adminHandler.GetDashboard)

			adminRoutes.POST("/doctors", adminHandler.CreateDoctor)
			adminRoutes.GET("/doctors", adminHandler.ListDoctors)
			adminRoutes.PUT("/doctors/:id", adminHandler.UpdateDoctor)
			adminRoutes.DELETE("/doctors/:id", adminHandler.DeleteDoctor)

			adminRoutes.POST("/patients", adminHandler.CreatePatient)
			adminRoutes.GET("/patients", adminHandler.ListPatients)
			adminRoutes.PUT("/patients/:id", adminHandler.UpdatePatient)
			adminRoutes.DELETE("/patients/:id", adminHandler.DeletePatient)

			adminRoutes.POST("/specializations", specializationHandler.CreateSpecialization)
			adminRoutes.PUT("/specializations/:id", specializationHandler.UpdateSpecialization)
			adminRoutes.DELETE("/specializations/:id", specializationHandler.DeleteSpecialization)
		}

		// Appointment lifecycle
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RequireRole(models.RolePatient), appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments) // role-aware inside the handler
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/reschedule", middleware.RequireRole(models.RolePatient), appointmentHandler.RescheduleAppointment)
			appointmentRoutes.PATCH("/:id/cancel", middleware.RequireRole(models.RolePatient, models.RoleDoctor), appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RequireRole(models.RoleDoctor), appointmentHandler.CompleteAppointment)
		}

		// Treatment history (read-only; treatments are written only by
		// completing an appointment)
		treatmentRoutes := private.Group("/treatments")
		{
			treatmentRoutes.GET("", middleware.RequireRole(models.RolePatient), appointmentHandler.GetTreatmentHistory)
			treatmentRoutes.GET("/patient/:patientId", middleware.RequireRole(models.RoleDoctor), appointmentHandler.GetPatientHistory)
		}

		// Doctor's own availability ledger and patient roster
		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(middleware.RequireRole(models.RoleDoctor))
		{
			doctorRoutes.POST("/availability", availabilityHandler.AddWindow)
			doctorRoutes.GET("/availability", availabilityHandler.ListWindows)
			doctorRoutes.DELETE("/availability/:id", availabilityHandler.RemoveWindow)
			doctorRoutes.GET("/patients", appointmentHandler.GetDoctorPatients)
		}

		// Per-role appointment counters
		private.GET("/dashboard", middleware.RequireRole(models.RolePatient, models.RoleDoctor), appointmentHandler.GetDashboardStats)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
