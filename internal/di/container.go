package di

import (
	"context"
	"io"

	"github.com/GoArmGo/PhotoHub/internal/adapter/imaging"
	"github.com/GoArmGo/PhotoHub/internal/adapter/storage/minio"
	"github.com/GoArmGo/PhotoHub/internal/app"
	"github.com/GoArmGo/PhotoHub/internal/auth"
	"github.com/GoArmGo/PhotoHub/internal/config"
	"github.com/GoArmGo/PhotoHub/internal/database/client"
	"github.com/GoArmGo/PhotoHub/internal/database/postgres"
	"github.com/GoArmGo/PhotoHub/internal/database/storage"
	"github.com/GoArmGo/PhotoHub/internal/logger"
	"github.com/GoArmGo/PhotoHub/internal/rabbitmq"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []io.Closer
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	// 2. PostgreSQL: пул sqlx, миграции, GORM поверх того же пула
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	if err := postgres.ApplyMigrations(cfg.MigrationsPath, cfg.DatabaseURL, slogger); err != nil {
		return fail(err)
	}
	gormDB, err := postgres.OpenGorm(dbClient.DB)
	if err != nil {
		return fail(err)
	}

	// 3. Хранилища
	photoStorage := storage.NewPhotoStorage(dbClient.DB, slogger)
	tagStorage := storage.NewTagStorage(dbClient.DB, slogger)
	collectionStorage := storage.NewCollectionStorage(dbClient.DB, slogger)
	engagementStorage := storage.NewEngagementStorage(dbClient.DB, slogger)
	statsStorage := storage.NewUserStatsStorage(dbClient.DB, slogger)
	userStorage := postgres.NewGormUserStorage(gormDB, slogger)

	// 4. Внешние сервисы: файловое хранилище, изображения, RabbitMQ
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		return fail(err)
	}
	images := imaging.NewInspector(cfg.MaxImagePixels)

	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, rabbitMQClient)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	// 5. Бизнес-логика
	assembler := usecase.NewAssembler(fileStorage, userStorage, engagementStorage, collectionStorage)

	photoUseCase := usecase.NewPhotoUseCase(
		photoStorage, tagStorage, userStorage, fileStorage, images, rabbitMQClient, assembler, slogger,
	)
	engagementUseCase := usecase.NewEngagementUseCase(
		engagementStorage, photoStorage, userStorage, fileStorage, assembler, slogger,
	)

	deps := app.Deps{
		Logger:        slogger,
		Photos:        photoUseCase,
		Collections:   usecase.NewCollectionUseCase(collectionStorage, photoStorage, userStorage, assembler, slogger),
		Engagement:    engagementUseCase,
		Users:         usecase.NewUserUseCase(userStorage, statsStorage, fileStorage, images, assembler, slogger),
		Auth:          usecase.NewAuthUseCase(userStorage, tokens, assembler, slogger),
		Thumbnails:    usecase.NewThumbnailProcessor(photoStorage, fileStorage, images, cfg.ThumbnailWidth, slogger),
		Tokens:        tokens,
		Consumer:      rabbitMQClient,
		UploadLimiter: make(chan struct{}, cfg.UploadConcurrency),
		Closers:       closers,
	}

	slogger.Info("all dependencies initialized")
	return app.NewApp(cfg, deps), nil
}
