package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/auth"
	"github.com/GoArmGo/PhotoHub/internal/config"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/logger"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type stubAuth struct {
	usecase.AuthUseCase
}

func (stubAuth) Login(context.Context, string, string) (*usecase.AuthResponse, error) {
	return nil, domain.ErrUnauthenticated
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     time.Second,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadMB:        1,
	}
}

func TestRun_UnknownModeClosesResources(t *testing.T) {
	var order []string
	a := NewApp(testConfig(), Deps{
		Logger: logger.Discard(),
		Closers: []io.Closer{
			closerFunc(func() error { order = append(order, "db"); return nil }),
			closerFunc(func() error { order = append(order, "rabbitmq"); return errors.New("already closed") }),
		},
	})

	err := a.Run(context.Background(), "batch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
	assert.Equal(t, []string{"rabbitmq", "db"}, order)
	assert.NoError(t, a.Shutdown())
}

func TestRouter_MountsRoutes(t *testing.T) {
	a := NewApp(testConfig(), Deps{
		Logger:        logger.Discard(),
		Auth:          stubAuth{},
		Tokens:        auth.NewTokenManager("app-test", time.Hour),
		UploadLimiter: make(chan struct{}, 1),
	})
	router := a.newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"ann","password":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collections", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
