package velibdata

import (
	"crypto/subtle"
	"net/http"
)

// requireAPIKey guards mutating routes with the X-API-Key header. An
// unconfigured secret rejects everything, matching the original deployment
// contract.
func (a *API) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if a.cfg.KeySecret == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(a.cfg.KeySecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid API key, provide a valid X-API-Key header")
			return
		}
		next(w, r)
	}
}
