package httpx

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/probatio/probatio/pkg/cryptox"
	"github.com/probatio/probatio/pkg/slogx"
)

// StaffAPIKeySubject is the staff id recorded for machine callers that
// authenticate with the service API key instead of a dashboard session.
const StaffAPIKeySubject = "staff-api-key"

// StaffAuthMiddleware guards back-office endpoints. Staff sessions are HS256
// JWTs minted by the dashboard with a shared secret. When apiKeyHash is set
// (an Argon2id hash of the service API key, held at rest — never the key
// itself), a bearer matching it is accepted too, for machine callers without
// a dashboard session. The public token-bearing surface never goes through
// this middleware.
func StaffAuthMiddleware(secret []byte, issuer, apiKeyHash string) Middleware {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims := jwt.RegisteredClaims{}
			if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}); err != nil {
				if apiKeyHash != "" && cryptox.VerifyCredential(raw, apiKeyHash) == nil {
					ctx = contextWithStaffID(ctx, StaffAPIKeySubject)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Warn("staff bearer verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if claims.Subject == "" {
				writeBearerError(w, "token missing subject")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithStaffID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
}
