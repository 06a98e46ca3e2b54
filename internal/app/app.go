package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/PhotoHub/internal/config"
	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/handler"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
)

// Mode: режим запуска процесса
const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// Deps: собранные зависимости приложения
type Deps struct {
	Logger        *slog.Logger
	Photos        usecase.PhotoUseCase
	Collections   usecase.CollectionUseCase
	Engagement    usecase.EngagementUseCase
	Users         usecase.UserUseCase
	Auth          usecase.AuthUseCase
	Thumbnails    *usecase.ThumbnailProcessor
	Tokens        handler.TokenVerifier
	Consumer      ports.PhotoEventConsumer
	UploadLimiter chan struct{}
	// Closers закрываются в обратном порядке при завершении
	Closers []io.Closer
}

type App struct {
	Config        *config.Config
	logger        *slog.Logger
	photos        usecase.PhotoUseCase
	collections   usecase.CollectionUseCase
	engagement    usecase.EngagementUseCase
	users         usecase.UserUseCase
	auth          usecase.AuthUseCase
	thumbnails    *usecase.ThumbnailProcessor
	tokens        handler.TokenVerifier
	consumer      ports.PhotoEventConsumer
	uploadLimiter chan struct{}
	closers       []io.Closer
}

func NewApp(cfg *config.Config, deps Deps) *App {
	return &App{
		Config:        cfg,
		logger:        deps.Logger,
		photos:        deps.Photos,
		collections:   deps.Collections,
		engagement:    deps.Engagement,
		users:         deps.Users,
		auth:          deps.Auth,
		thumbnails:    deps.Thumbnails,
		tokens:        deps.Tokens,
		consumer:      deps.Consumer,
		uploadLimiter: deps.UploadLimiter,
		closers:       deps.Closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает выбранный режим и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close resource: %w", err)
		}
	}
	a.closers = nil
	return firstErr
}
