package httpapi

import (
	"context"
	"errors"
	"net/http"
)

var errRequestFailed = errors.New("request failed")

type txWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *txWriter) WriteHeader(code int) {
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *txWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// withRequestTx runs guard evaluation and the handler inside exactly one
// transaction: begin at request start, commit when the response completed
// below 500, roll back otherwise. Handler panics roll back too, via the
// store's deferred rollback, before propagating.
func (h *Handler) withRequestTx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &txWriter{ResponseWriter: w, status: http.StatusOK}
		err := h.store.InTx(r.Context(), func(ctx context.Context) error {
			next.ServeHTTP(writer, r.WithContext(ctx))
			if writer.status >= http.StatusInternalServerError {
				return errRequestFailed
			}
			return nil
		})
		if err != nil && !writer.wroteHeader {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
	})
}
