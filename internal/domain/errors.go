package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Variantes de ErrNotFound por entidad; errors.Is(err, ErrNotFound) sigue siendo cierto.
var (
	ErrUserNotFound    = fmt.Errorf("usuario: %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("producto: %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("pedido: %w", ErrNotFound)
)
