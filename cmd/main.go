package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelLessonHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/cancel_lesson"
	createBookingHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/create_booking"
	findNextSlotHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/find_next_slot"
	getAvailableSlotsHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_available_slots"
	getLessonHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_lesson"
	getScheduleHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_schedule"
	getSchoolLessonsHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_school_lessons"
	getStudentLessonsHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_student_lessons"
	getWeekAvailabilityHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/get_week_availability"
	updateLessonStatusHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/update_lesson_status"
	updateScheduleHandler "github.com/KerelosNasser/driving-school-sub004/internal/api/handlers/update_schedule"
	"github.com/KerelosNasser/driving-school-sub004/internal/api/middleware"
	"github.com/KerelosNasser/driving-school-sub004/internal/config"
	lessonRepo "github.com/KerelosNasser/driving-school-sub004/internal/infra/storage/lesson"
	scheduleRepo "github.com/KerelosNasser/driving-school-sub004/internal/infra/storage/schedule"
	"github.com/KerelosNasser/driving-school-sub004/internal/integrations/gcalendar"
	"github.com/KerelosNasser/driving-school-sub004/internal/scheduling"
	lessonsService "github.com/KerelosNasser/driving-school-sub004/internal/service/lessons"
	scheduleService "github.com/KerelosNasser/driving-school-sub004/internal/service/schedule"
	createBookingUC "github.com/KerelosNasser/driving-school-sub004/internal/usecase/create_booking"
	findNextSlotUC "github.com/KerelosNasser/driving-school-sub004/internal/usecase/find_next_slot"
	getAvailableSlotsUC "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_available_slots"
	getWeekAvailabilityUC "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_week_availability"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/logger"
	"github.com/KerelosNasser/driving-school-sub004/pkg/metrics"
	"github.com/KerelosNasser/driving-school-sub004/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting driving-school booking service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Кэш доступности и расписания
	cache := availcache.New(cfg.Cache.MaxSize, time.Duration(cfg.Cache.SweepInterval)*time.Second)
	defer cache.Stop()
	log.Info("Availability cache initialized (max_size=%d, sweep_interval=%ds)",
		cfg.Cache.MaxSize, cfg.Cache.SweepInterval)

	// Клиент внешнего календаря
	// При выключенной интеграции токены недоступны: чтения деградируют до
	// пустого списка событий, а записи в календарь пропускаются с warning
	credentialRefresher := gcalendar.NewCredentialRefresher(
		cfg.Calendar.TokenURL,
		cfg.Calendar.ClientID,
		cfg.Calendar.ClientSecret,
		log,
	)
	calendarClient := gcalendar.NewClient(
		cfg.Calendar.BaseURL,
		cfg.Calendar.CalendarID,
		time.Duration(cfg.Calendar.Timeout)*time.Second,
		credentialRefresher,
		log,
		metricsCollector,
	)
	if cfg.Calendar.Enabled {
		log.Info("Calendar integration enabled (base_url=%s, calendar_id=%s, timeout=%ds)",
			cfg.Calendar.BaseURL, cfg.Calendar.CalendarID, cfg.Calendar.Timeout)
	} else {
		log.Warn("Calendar integration disabled: availability is computed without external events")
	}

	// Инициализируем репозитории
	lessonRepository := lessonRepo.NewRepository(db)
	scheduleRepository := scheduleRepo.NewRepository(db)
	txMgr := txmanager.NewTransactionManager(db)

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		cache,
		time.Duration(cfg.Cache.ScheduleTTL)*time.Second,
		cfg.School.ManagerIDs,
		metricsCollector,
		log,
	)
	lessonSvc := lessonsService.NewService(
		lessonRepository,
		calendarClient,
		cache,
		cfg.School.ManagerIDs,
		log,
	)

	// Калькулятор доступности
	calculator := scheduling.NewCalculator(scheduleSvc, calendarClient, lessonRepository, log)

	// Инициализируем use cases
	availabilityTTL := time.Duration(cfg.Cache.AvailabilityTTL) * time.Second

	createBookingUseCase := createBookingUC.NewUseCase(
		lessonRepository,
		scheduleSvc,
		calendarClient,
		txMgr,
		cache,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		calculator,
		cache,
		availabilityTTL,
		metricsCollector,
		log,
	)
	getWeekAvailabilityUseCase := getWeekAvailabilityUC.NewUseCase(
		calculator,
		cache,
		availabilityTTL,
		metricsCollector,
		log,
	)
	findNextSlotUseCase := findNextSlotUC.NewUseCase(calculator, log)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getWeekAvailability := getWeekAvailabilityHandler.NewHandler(getWeekAvailabilityUseCase, log)
	findNextSlot := findNextSlotHandler.NewHandler(findNextSlotUseCase, log)
	getLesson := getLessonHandler.NewHandler(lessonSvc, log)
	cancelLesson := cancelLessonHandler.NewHandler(lessonSvc, log)
	getStudentLessons := getStudentLessonsHandler.NewHandler(lessonSvc, log)
	getSchoolLessons := getSchoolLessonsHandler.NewHandler(lessonSvc, log)
	updateLessonStatus := updateLessonStatusHandler.NewHandler(lessonSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Текущие настройки расписания школы
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Доступность ---
	// Слоты на конкретный день
	protected.HandleFunc("/availability/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Доступность на неделю
	protected.HandleFunc("/availability/week", getWeekAvailability.Handle).Methods(http.MethodGet)

	// Ближайший свободный слот
	protected.HandleFunc("/availability/next", findNextSlot.Handle).Methods(http.MethodGet)

	// --- Занятия ---
	// Запись на занятие
	protected.HandleFunc("/lessons", createBooking.Handle).Methods(http.MethodPost)

	// Список занятий школы (для менеджеров)
	protected.HandleFunc("/lessons", getSchoolLessons.Handle).Methods(http.MethodGet)

	// Получение занятия по ID
	protected.HandleFunc("/lessons/{lessonId}", getLesson.Handle).Methods(http.MethodGet)

	// Отмена занятия
	protected.HandleFunc("/lessons/{lessonId}/cancel", cancelLesson.Handle).Methods(http.MethodPost)

	// Смена статуса занятия (для менеджеров)
	protected.HandleFunc("/lessons/{lessonId}/status", updateLessonStatus.Handle).Methods(http.MethodPatch)

	// История занятий студента
	protected.HandleFunc("/students/{studentId}/lessons", getStudentLessons.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для менеджеров) ---
	protected.HandleFunc("/schedule", updateSchedule.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
