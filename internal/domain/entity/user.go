package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User representa un usuario registrado.
type User struct {
	ID           int64
	Name         string
	Email        string // único; es la identidad que viaja en el token
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // ROLE_USER, ROLE_ADMIN
	CreatedAt    time.Time
}
