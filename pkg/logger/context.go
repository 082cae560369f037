package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// WithRequestID devuelve un contexto con un sublogger que agrega request_id a cada línea.
func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	sub := l.zl.With().Str("request_id", requestID).Logger()
	return sub.WithContext(ctx)
}

// FromContext devuelve el logger del request; si no hay, el logger por defecto
// configurado en New (o uno deshabilitado si New nunca se llamó, p. ej. en tests).
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
