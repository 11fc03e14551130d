package middleware

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/HuyaneMatsu/hata-sub016/handlers"
)

// RequestIDHeader, request ID'nin taşındığı header.
const RequestIDHeader = "X-Request-ID"

// RequestID, her request'e bir ID atar ve response header'ına yazar.
// İstemci kendi ID'sini gönderdiyse (ör: bir gateway arkasında) o korunur.
// Tamamlanan request'ler ID ile birlikte log'lanır.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		ctx := context.WithValue(r.Context(), handlers.RequestIDContextKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Printf("[http] %s %s %s → %d (%s)", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// statusRecorder, handler'ın yazdığı status kodunu yakalar.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack, /ws upgrade'i için alttaki writer'a devreder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
