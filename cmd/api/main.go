// @title           Order Management API
// @version         1.0
// @description     Usuarios, productos y pedidos con autenticación por token Bearer.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/order-management-api/docs"
	"github.com/jhoicas/order-management-api/internal/application/auth"
	"github.com/jhoicas/order-management-api/internal/application/ordering"
	"github.com/jhoicas/order-management-api/internal/application/usecase"
	"github.com/jhoicas/order-management-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/order-management-api/internal/interfaces/http"
	"github.com/jhoicas/order-management-api/pkg/config"
	"github.com/jhoicas/order-management-api/pkg/jwt"
	"github.com/jhoicas/order-management-api/pkg/logger"
	"github.com/jhoicas/order-management-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}
	m := metrics.New("order_management")

	authUC := auth.NewAuthUseCase(userRepo, tokens)
	productUC := usecase.NewProductUseCase(productRepo)
	userUC := usecase.NewUserUseCase(userRepo, txRunner)
	orderUC := ordering.NewOrderUseCase(orderRepo, txRunner, m)

	app := httpRouter.NewApp(cfg.App.Name)

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Logger:      log,
		Metrics:     m,
		AuthLimiter: httpRouter.NewIPRateLimiter(cfg.RateLimit.AuthPerSecond, cfg.RateLimit.AuthBurst),
		AuthUC:      authUC,
		ProductUC:   productUC,
		UserUC:      userUC,
		OrderUC:     orderUC,
		Tokens:      tokens,
		// Swagger UI en local: http://localhost:<port>/docs
		Docs: swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Order Management API",
		}),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
