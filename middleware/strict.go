package middleware

import (
	"context"
	"net/http"

	goPerm "github.com/MrEthical07/goPerm"
)

// StrictGuard returns middleware that uses the grant token only to
// identify the caller, then re-checks the required bit against the live
// registry. Revocations take effect immediately at the cost of a store
// read per request.
func StrictGuard(reg *goPerm.Registry, required goPerm.Mask) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reg == nil || reg.Grants() == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, ok := verifyGrant(reg.Grants(), r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			err := reg.RequireCapability(r.Context(), goPerm.Principal(claims.Prn), required)
			if err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), grantContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
