package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/order-management-api/pkg/logger"
	"github.com/jhoicas/order-management-api/pkg/metrics"
)

// HeaderRequestID cabecera con el identificador de request.
const HeaderRequestID = "X-Request-ID"

// RequestID respeta el X-Request-ID entrante o genera uno, lo devuelve en la respuesta
// y deja en el contexto un logger con request_id.
func RequestID(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		if log != nil {
			c.SetUserContext(log.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// AccessLog escribe una línea por request. Resuelve aquí los errores de la cadena
// para que el status registrado sea el que recibe el cliente.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		ev := logger.FromContext(c.UserContext()).Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if p := GetPrincipal(c); p != nil {
			ev = ev.Int64("user_id", p.UserID).Bool("admin", p.IsAdmin())
		}
		ev.Msg("request")
		return nil
	}
}

// Metrics registra conteo y latencia por ruta (el patrón, no el path concreto).
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start).Seconds())
		return err
	}
}
