package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const apiTokenHeader = "X-API-Token"

// requireToken пропускает запрос только с правильным X-API-Token
func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(apiTokenHeader)
			if got == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":   "authentication token required",
					"message": "send your access token in the " + apiTokenHeader + " header",
				})
				return
			}
			if got != token {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":   "invalid token",
					"message": "the provided token is not valid",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger пишет строку лога на каждый запрос
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
