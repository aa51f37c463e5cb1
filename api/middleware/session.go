package middleware

import (
	"net/http"

	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/pkg/config"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/session"
)

// Session loads the anonymous storefront session named by the sid cookie and
// writes it back after the handler ran. First-time visitors get a fresh sid;
// every write-back slides the session TTL.
func Session(cfg config.SessionConfig, store *session.Store, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				sid = cookie.Value
			}
			if sid == "" {
				sid = session.NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			state, err := store.Load(r.Context(), sid)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			ctx := WithSession(r.Context(), sid, state)
			next.ServeHTTP(w, r.WithContext(ctx))

			if err := store.Save(ctx, sid, state); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "failed to persist session")
			}
		})
	}
}
