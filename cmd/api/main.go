package main

import (
	"fmt"
	"net/http"

	"github.com/attendly/attendance-backend-go/internal/config"
	appHTTP "github.com/attendly/attendance-backend-go/internal/handler/http"
	"github.com/attendly/attendance-backend-go/internal/pkg/cron"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
	"github.com/attendly/attendance-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendly/attendance-backend-go/internal/service/attendance"
	dailyService "github.com/attendly/attendance-backend-go/internal/service/dailyattendance"
	deviceService "github.com/attendly/attendance-backend-go/internal/service/device"
	"github.com/attendly/attendance-backend-go/internal/service/geofence"
	registerService "github.com/attendly/attendance-backend-go/internal/service/register"
	"github.com/attendly/attendance-backend-go/internal/service/schedule"
	workingAtService "github.com/attendly/attendance-backend-go/internal/service/workingat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc := cfg.Location()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	registerRepo := postgresql.NewRegisterRepository(db)
	workingAtRepo := postgresql.NewWorkingAtRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	dailyRepo := postgresql.NewDailyAttendanceRepository(db)
	deviceRepo := postgresql.NewLocalDeviceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	resolver := schedule.NewResolver(loc)
	geoValidator := geofence.NewValidator(deviceRepo)

	dailySvc := dailyService.NewDailyAttendanceService(dailyRepo, attendanceRepo, registerRepo, workingAtRepo, loc)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		registerRepo,
		workingAtRepo,
		employeeRepo,
		dailySvc,
		geoValidator,
		resolver,
		loc,
	)
	registerSvc := registerService.NewRegisterService(registerRepo)
	workingAtSvc := workingAtService.NewWorkingAtService(workingAtRepo, registerRepo)
	deviceSvc := deviceService.NewLocalDeviceService(deviceRepo, registerRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	registerHandler := appHTTP.NewRegisterHandler(registerSvc)
	workingAtHandler := appHTTP.NewWorkingAtHandler(workingAtSvc)
	deviceHandler := appHTTP.NewLocalDeviceHandler(deviceSvc)
	dailyHandler := appHTTP.NewDailyAttendanceHandler(dailySvc)

	router := appHTTP.NewRouter(
		jwtService,
		attendanceHandler,
		registerHandler,
		workingAtHandler,
		deviceHandler,
		dailyHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewDailyAttendanceJobs(dailySvc, cfg.Aggregation, loc).RegisterJobs(scheduler, cfg.Aggregation.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
