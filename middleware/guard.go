package middleware

import (
	"context"
	"net/http"
	"strings"

	goPerm "github.com/MrEthical07/goPerm"
	"github.com/MrEthical07/goPerm/token"
)

type grantContextKey struct{}

// GrantFromContext returns the verified grant claims injected by a guard.
func GrantFromContext(ctx context.Context) (*token.GrantClaims, bool) {
	claims, ok := ctx.Value(grantContextKey{}).(*token.GrantClaims)
	return claims, ok
}

// Guard returns middleware that admits requests bearing a valid grant
// token whose mask snapshot holds at least one bit of required. The
// registry is never consulted; revocations take effect only when the
// grant expires.
func Guard(manager *token.Manager, required goPerm.Mask) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, ok := verifyGrant(manager, r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !goPerm.Mask(claims.Msk).Has(required) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), grantContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyGrant(manager *token.Manager, r *http.Request) (*token.GrantClaims, bool) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}

	claims, err := manager.ParseGrant(raw)
	if err != nil {
		return nil, false
	}

	return claims, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}
