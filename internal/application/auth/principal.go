package auth

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/domain/entity"
)

// Principal identidad autenticada de un request.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

// IsAdmin indica si el principal tiene rol de administrador.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == entity.RoleAdmin
}

type principalKey struct{}

// WithPrincipal devuelve un contexto que lleva el principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext devuelve el principal del contexto, o nil si el request no está autenticado.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
