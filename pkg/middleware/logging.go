package middleware

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/bfroz/tax-insights-api/pkg/log"
)

// Requisições acima deste limite geram um aviso de lentidão. O pipeline
// de detectores roda dentro da requisição, então este é o primeiro
// sinal de que uma janela de transações cresceu demais.
const slowRequestThreshold = 500 * time.Millisecond

// LoggingMiddleware registra cada requisição HTTP com um ID de
// correlação próprio, o status final e a duração
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// O healthcheck roda a cada poucos segundos e só gera ruído
			if r.URL.Path == "/healthcheck" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, correlationID := log.WithCorrelationID(r.Context())
			r = r.WithContext(ctx)

			sw := newStatusWriter(w)
			startTime := time.Now()

			next.ServeHTTP(sw, r)

			duration := time.Since(startTime)
			logger := log.L.WithFields(log.Fields{
				"correlation_id": correlationID,
				"method":         r.Method,
				"path":           r.URL.Path,
				"status_code":    sw.statusCode,
				"duration_ms":    duration.Milliseconds(),
			})

			switch {
			case sw.statusCode >= 500:
				logger.Error("Requisição finalizada com erro")
			case sw.statusCode >= 400:
				logger.Warn("Requisição finalizada com aviso")
			default:
				logger.Info("Requisição finalizada com sucesso")
			}

			if duration > slowRequestThreshold {
				logger.Warnf("Requisição lenta: %s", duration)
			}
		})
	}
}

// statusWriter captura o status code escrito pelo handler
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{w, http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

// LogPanicMiddleware converte panics em 500, registrando o stack trace
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := make([]byte, 4096)
					stackSize := runtime.Stack(stack, false)
					stackTrace := string(stack[:stackSize])

					logger := log.L.WithFields(log.Fields{
						"correlation_id": log.GetCorrelationID(r.Context()),
						"panic_error":    err,
						"method":         r.Method,
						"path":           r.URL.Path,
					})
					logger.Error("Erro não tratado na aplicação")

					if log.IsDevelopment() {
						fmt.Fprintf(os.Stderr, "\n=== STACK TRACE ===\n%s\n===================\n", stackTrace)
					} else {
						logger.WithField("stack_trace", stackTrace).Error("Stack trace do erro")
					}

					http.Error(w, "Erro interno no servidor", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
