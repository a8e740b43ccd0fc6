package http

import (
	"context"
	"log/slog"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/logging"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	clientIPContextKey  contextKey = "client_ip"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithClientIP stores the resolved caller address. A nil ip records
// that no address could be resolved.
func ContextWithClientIP(ctx context.Context, ip *string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ClientIPFromContext returns the caller address resolved by ResolveClientIP.
func ClientIPFromContext(ctx context.Context) *string {
	ip, _ := ctx.Value(clientIPContextKey).(*string)
	return ip
}

// ContextWithLogger returns a derived context that carries the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request logger and tags it with the handler and
// operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	return logger.With(append(pairs, attrs...)...)
}
