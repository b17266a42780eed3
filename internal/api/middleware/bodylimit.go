package middleware

import "net/http"

// JSONBodyLimit caps the JSON routes of this API (login, job retry).
// Their payloads are a few hundred bytes; video uploads go through the
// multipart handler with its own, much larger, MaxBytesReader.
const JSONBodyLimit = 1 << 20

// MaxBodySize limits the request body to the given number of bytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
