package middleware

import (
	"net/http"
	"strings"
)

// MsgUnsupportedMediaType is the error body of a rejected non-JSON request.
const MsgUnsupportedMediaType = "Request body must be application/json."

// AllowJSON rejects requests whose body is not application/json with 415
// and the usual {"error": ...} body. Bodiless requests pass, as with chi's
// AllowContentType.
func AllowJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
		if strings.EqualFold(strings.TrimSpace(ct), "application/json") {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnsupportedMediaType, MsgUnsupportedMediaType)
	})
}
