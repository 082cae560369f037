package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/order-management-api/internal/application/auth"
	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

// LocalPrincipal key de c.Locals donde queda el *auth.Principal del request.
const LocalPrincipal = "principal"

// TokenVerifier verifica tokens firmados (lo implementa *jwt.Manager).
type TokenVerifier interface {
	Parse(token string) (string, error)
	IsValid(token, expectedIdentity string) bool
}

// PrincipalLoader carga el usuario dueño de una identidad (lo implementa *auth.AuthUseCase).
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, email string) (*auth.Principal, error)
}

// AuthMiddleware compuerta pasiva: si hay un Bearer válido deja el principal en c.Locals y en el
// contexto del request. Cualquier fallo (sin header, token inválido o expirado, usuario borrado)
// sigue sin autenticar; la decisión de rechazar es de RequireAuth.
func AuthMiddleware(tokens TokenVerifier, loader PrincipalLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetPrincipal(c) != nil {
			return c.Next()
		}
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		ctx := c.UserContext()
		log := logger.FromContext(ctx)
		identity, err := tokens.Parse(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("token descartado")
			return c.Next()
		}
		principal, err := loader.LoadPrincipal(ctx, identity)
		if err != nil {
			log.Debug().Err(err).Str("email", identity).Msg("token sin usuario")
			return c.Next()
		}
		if !tokens.IsValid(tokenString, principal.Email) {
			return c.Next()
		}

		c.Locals(LocalPrincipal, principal)
		c.SetUserContext(auth.WithPrincipal(ctx, principal))
		return c.Next()
	}
}

// RequireAuth rechaza con 401 los requests sin principal. Debe ir DESPUÉS de AuthMiddleware.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetPrincipal(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "se requiere un token Bearer válido"})
		}
		return c.Next()
	}
}

// GetPrincipal devuelve el principal del request (después del middleware de auth), o nil.
func GetPrincipal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(LocalPrincipal).(*auth.Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
