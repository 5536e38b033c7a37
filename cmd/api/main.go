package main

import (
	"fmt"
	"net/http"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/config"
	appHTTP "github.com/sitecrew-app/sitecrew-backend-go/internal/handler/http"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/cron"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/sse"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/token"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/repository/postgresql"
	attendanceService "github.com/sitecrew-app/sitecrew-backend-go/internal/service/attendance"
	notificationService "github.com/sitecrew-app/sitecrew-backend-go/internal/service/notification"
	rosterService "github.com/sitecrew-app/sitecrew-backend-go/internal/service/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	shiftScheduleRepo := postgresql.NewShiftScheduleRepository(db)
	workerRepo := postgresql.NewWorkerRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	tokenService := token.NewService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		shiftScheduleRepo,
		notificationSvc,
		cfg.Shift,
	)
	rosterSvc := rosterService.NewRosterService(workerRepo, attendanceRepo)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(attendanceRepo, workerRepo, notificationRepo, db)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	rosterHandler := appHTTP.NewRosterHandler(rosterSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, hub)

	router := appHTTP.NewRouter(
		tokenService,
		attendanceHandler,
		rosterHandler,
		notificationHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
