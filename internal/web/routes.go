package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/jaydudhale/Attendance-system-Backend/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers. Mutating handlers get the stats handler so they
	// can invalidate its cache when the registry changes.
	statsHandler := handlers.NewStatsHandler(s.config)
	studentsHandler := handlers.NewStudentsHandler(s.config, statsHandler)
	descriptorsHandler := handlers.NewDescriptorsHandler(s.config, statsHandler)
	matchHandler := handlers.NewMatchHandler(s.config, statsHandler)
	attendanceHandler := handlers.NewAttendanceHandler(s.config)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Students
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Create)
		r.Get("/students/{id}", studentsHandler.Get)
		r.Put("/students/{id}", studentsHandler.Update)
		r.Delete("/students/{id}", studentsHandler.Delete)

		// Descriptors (enrollment)
		r.Get("/students/{id}/descriptors", descriptorsHandler.List)
		r.Post("/students/{id}/descriptors", descriptorsHandler.Enroll)
		r.Delete("/students/{id}/descriptors", descriptorsHandler.DeleteAll)
		r.Delete("/students/{id}/descriptors/{descriptorId}", descriptorsHandler.DeleteOne)
		r.Get("/descriptors/audit", descriptorsHandler.Audit)

		// Matching
		r.Post("/match", matchHandler.Match)
		r.Post("/attendance/recognize", matchHandler.Recognize)

		// Attendance
		r.Get("/attendance", attendanceHandler.List)
		r.Get("/attendance/export", attendanceHandler.Export)

		// Stats
		r.Get("/stats", statsHandler.Get)
	})
}
