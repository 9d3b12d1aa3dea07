package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/attendly/attendance-backend-go/internal/handler/http/middleware"
	"github.com/attendly/attendance-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	registerHandler RegisterHandler,
	workingAtHandler WorkingAtHandler,
	deviceHandler LocalDeviceHandler,
	dailyHandler DailyAttendanceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Post("/check-out", attendanceHandler.CheckOut)
					r.Post("/breaks", attendanceHandler.StartBreak)
					r.Post("/breaks/{breakId}/stop", attendanceHandler.StopBreak)
					r.Post("/pauses", attendanceHandler.StartPause)
					r.Post("/pauses/{pauseId}/stop", attendanceHandler.StopPause)
				})
			})

			r.Route("/registers", func(r chi.Router) {
				r.Get("/", registerHandler.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.ManagerOnly)
					r.Post("/", registerHandler.Create)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", registerHandler.Get)
					r.Get("/daily/{date}", dailyHandler.Get)

					r.Group(func(r chi.Router) {
						r.Use(middleware.ManagerOnly)
						r.Put("/", registerHandler.Update)

						r.Route("/devices", func(r chi.Router) {
							r.Get("/", deviceHandler.List)
							r.Post("/", deviceHandler.Pair)
							r.Delete("/{deviceId}", deviceHandler.Unpair)
						})

						r.Route("/working-ats", func(r chi.Router) {
							r.Get("/", workingAtHandler.ListByRegister)
							r.Post("/", workingAtHandler.Assign)
						})
					})
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.ManagerOnly)
				r.Route("/working-ats/{workingAtId}", func(r chi.Router) {
					r.Get("/", workingAtHandler.Get)
					r.Put("/shifts", workingAtHandler.UpdateShifts)
				})
			})
		})
	})
	return r
}
