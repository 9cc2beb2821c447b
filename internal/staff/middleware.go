package staff

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// ContextWithMember attaches the authenticated member to the context.
func ContextWithMember(ctx context.Context, member Member) context.Context {
	return context.WithValue(ctx, contextKey{}, member)
}

// MemberFromContext returns the authenticated member, if any.
func MemberFromContext(ctx context.Context) (Member, bool) {
	member, ok := ctx.Value(contextKey{}).(Member)
	return member, ok
}

// NameFromContext returns the authenticated member's display name, or "system"
// when the request carries no staff identity.
func NameFromContext(ctx context.Context) string {
	if member, ok := MemberFromContext(ctx); ok {
		return member.DisplayName
	}
	return "system"
}

// Middleware guards routes with HTTP basic authentication against the staff
// directory.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require authenticates the request and stores the member in the context.
func (m Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			m.challenge(w)
			return
		}
		member, err := m.Service.Authenticate(r.Context(), username, password)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("staff auth failed", slog.String("username", username))
			}
			m.challenge(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithMember(r.Context(), member)))
	})
}

func (m Middleware) challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="solara"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
