package auth

import (
	"encoding/json"
	"net/http"
)

// Authenticate returns middleware that resolves the caller with authn and
// stores the Identity on the request context. Rejected credentials get 401
// and internal failures 500. A nil authn marks every request Anonymous.
func Authenticate(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := Anonymous()
			if authn != nil {
				var err error
				id, err = authn.Authenticate(r)
				switch {
				case IsCredentialError(err):
					writeError(w, http.StatusUnauthorized, err.Error())
					return
				case err != nil:
					writeError(w, http.StatusInternalServerError, "auth: authentication unavailable")
					return
				case id == nil:
					writeError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole returns middleware that answers 403 unless the request's
// identity holds one of roles. Anonymous identities pass.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			switch {
			case id == nil:
				writeError(w, http.StatusUnauthorized, ErrMissingCredentials.Error())
			case !id.Anonymous && !id.HasAnyRole(roles...):
				writeError(w, http.StatusForbidden, ErrForbidden.Error())
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="invoicekit"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
