package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/skillzone-api/internal/config"
	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/db/memory"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/metrics"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/services/auth"
	"github.com/rajivgeraev/skillzone-api/internal/services/barter"
	"github.com/rajivgeraev/skillzone-api/internal/services/cloudinary"
	"github.com/rajivgeraev/skillzone-api/internal/services/feedback"
	"github.com/rajivgeraev/skillzone-api/internal/services/message"
	"github.com/rajivgeraev/skillzone-api/internal/services/skill"
	"github.com/rajivgeraev/skillzone-api/internal/services/user"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
	"github.com/rajivgeraev/skillzone-api/internal/websocket"
)

// storage объединяет требования всех сервисов к хранилищу
type storage interface {
	auth.Repository
	user.Repository
	skill.Repository
	barter.Repository
	feedback.Repository
	message.Repository
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatalf("Ошибка конфигурации: %v", err)
	}
	logger.Init(cfg.AppEnv)

	store, err := openStorage(cfg)
	if err != nil {
		logger.Get().Fatalf("Ошибка при инициализации хранилища: %v", err)
	}
	defer db.CloseDB()

	jwtService := utils.NewJWTService(cfg.JWTSecret)
	v := validator.New()

	// Уведомления в реальном времени обслуживает отдельный сервер
	hub := websocket.NewManager()
	wsServer := hub.NewServer(":"+cfg.WSPort, jwtService)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SkillZone API",
		ErrorHandler: middleware.ErrorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))
	app.Use(metrics.Middleware())

	app.Get("/health", func(c fiber.Ctx) error {
		ctx, cancel := db.GetContext()
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.WithError(err).Warn("База данных недоступна")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	// Создаём сервисы и регистрируем маршруты
	auth.NewHandler(auth.NewService(cfg, store, jwtService), jwtService, v).SetupRoutes(app)
	user.NewHandler(user.NewService(store)).SetupRoutes(app)
	skill.NewHandler(skill.NewService(store), jwtService, v).SetupRoutes(app)
	barter.NewHandler(barter.NewService(store, hub), jwtService, v).SetupRoutes(app)
	feedback.NewHandler(feedback.NewService(store), jwtService, v).SetupRoutes(app)
	message.NewHandler(message.NewService(store, hub), jwtService, v).SetupRoutes(app)
	cloudinary.NewHandler(cloudinary.NewCloudinaryService(cfg.CloudinaryConfig), jwtService).SetupRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Get().Infof("WebSocket сервер запущен на порту %s", cfg.WSPort)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Ошибка WebSocket сервера")
			stop()
		}
	}()

	go func() {
		logger.Get().Infof("SkillZone API запущен на порту %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.WithError(err).Error("Ошибка HTTP сервера")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Get().Info("Останавливаем сервер")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Ошибка при остановке HTTP сервера")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Ошибка при остановке WebSocket сервера")
	}
	hub.Shutdown()
}

// openStorage выбирает хранилище по STORAGE_DRIVER
func openStorage(cfg *config.Config) (storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Get().Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		return memory.New(), nil
	}

	if err := db.InitDB(cfg); err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}
	return db.NewStore(db.Pool), nil
}
