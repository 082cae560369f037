package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpMinutes vigencia por defecto de un token (3 horas).
const DefaultExpMinutes = 180

// ErrInvalidToken se devuelve cuando el token no es válido por cualquier motivo
// (firma, formato, algoritmo o expiración). El error original queda envuelto.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Manager emite y verifica tokens HS256 con un único secreto fijo durante la vida del proceso.
type Manager struct {
	secret     []byte
	issuer     string
	expMinutes int
}

// NewManager construye el manager. El secreto no puede ser vacío.
func NewManager(secret, issuer string, expMinutes int) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Manager{secret: []byte(secret), issuer: issuer, expMinutes: expMinutes}, nil
}

// Generate genera un token firmado con la identidad como subject, fecha de emisión y expiración.
func (m *Manager) Generate(identity string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(m.expMinutes) * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse valida el token y devuelve la identidad (subject).
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func (m *Manager) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: claims inválidos", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// IsValid es cierto si el token verifica y su identidad coincide con la esperada.
func (m *Manager) IsValid(tokenString, expectedIdentity string) bool {
	identity, err := m.Parse(tokenString)
	return err == nil && identity == expectedIdentity
}
