package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starlitcards/trade-core/tradecore/logger"
)

// NewRouter creates a chi router with all trade routes registered and
// request logging.
func NewRouter(tradeH *TradeHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/trades", tradeH.Create)
	r.Post("/trades/{trade_id}/accept", tradeH.Accept)
	r.Post("/trades/{trade_id}/reject", tradeH.Reject)
	r.Post("/trades/{trade_id}/cancel", tradeH.Cancel)
	r.Post("/trades/{trade_id}/complete", tradeH.Complete)
	r.Get("/users/{user_id}/trades", tradeH.History)

	return r
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		logger.LogRequest(r.Method, r.URL.Path, ww.status, time.Since(start))
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
