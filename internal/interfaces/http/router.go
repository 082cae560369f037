package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/order-management-api/internal/application/auth"
	"github.com/jhoicas/order-management-api/internal/application/ordering"
	"github.com/jhoicas/order-management-api/internal/application/usecase"
	"github.com/jhoicas/order-management-api/pkg/logger"
	"github.com/jhoicas/order-management-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Logger      *logger.Logger
	Metrics     *metrics.Metrics // opcional; sin él no se expone /metrics
	AuthLimiter *IPRateLimiter   // opcional; sin él /auth no se limita
	Docs        fiber.Handler    // opcional; UI de Swagger, queda detrás de los middlewares globales

	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	UserUC    *usecase.UserUseCase
	OrderUC   *ordering.OrderUseCase
	Tokens    TokenVerifier
}

// NewApp crea la app Fiber con el traductor de errores de la API.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
}

// Router registra middlewares globales y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestID(deps.Logger))
	if deps.Metrics != nil {
		app.Use(Metrics(deps.Metrics))
	}
	app.Use(AccessLog())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	if deps.Docs != nil {
		app.Use(deps.Docs)
	}

	// Compuerta pasiva: autentica si puede, nunca rechaza.
	app.Use(AuthMiddleware(deps.Tokens, deps.AuthUC))

	// Auth (público, con límite por IP)
	authGroup := app.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Middleware())
	}
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	orders := app.Group("/orders", RequireAuth())
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/createOrder", orderHandler.Create)
	orders.Get("/getOrder/:id", orderHandler.GetByID)
	orders.Delete("/cancelOrder/:id", orderHandler.Cancel)
	orders.Get("/user/:userId", orderHandler.ListByUser)

	products := app.Group("/products", RequireAuth())
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/addProduct", productHandler.Add)
	products.Get("/getAllProducts", productHandler.List)
	products.Delete("/deleteProduct/:id", productHandler.Delete)

	users := app.Group("/users", RequireAuth())
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/getUser/:id", userHandler.GetByID)
	users.Delete("/deleteUser/:id", userHandler.Delete)
}
