package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"mip-notes/internal/logger"
)

// Logging логирует все HTTP запросы: метод, путь, статус и время выполнения
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// WrapResponseWriter запоминает статус ответа
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote":     r.RemoteAddr,
				"status":     status,
				"duration":   time.Since(start).String(),
			})

			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("HTTP request failed")
			case status >= http.StatusBadRequest:
				entry.Warn("HTTP request rejected")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}
