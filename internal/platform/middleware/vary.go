package middleware

import "net/http"

// Vary adds Accept to the Vary header. Problem documents are negotiated between JSON and CBOR,
// so caches must key on Accept (RFC 9110 section 12.5.5). Origin is added by the CORS middleware.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept")
			next.ServeHTTP(w, r)
		})
	}
}
