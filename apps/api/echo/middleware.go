package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/user"
	"github.com/biglotteryfund/funding/services/session"
)

const (
	welshPrefix       = "/welsh"
	contextLocaleKey  = "locale"
	contextSessionKey = "session"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		code := ctx.Response().Status
		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			code = herr.Code
		}
		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(ctx.Request().Method, route, strconv.Itoa(code)).Inc()
		httpRequestDuration.WithLabelValues(ctx.Request().Method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// localeMiddleware serves the Welsh site under the "/welsh" prefix.
func localeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		l := core.LocaleEn
		if p := req.URL.Path; p == welshPrefix || strings.HasPrefix(p, welshPrefix+"/") {
			l = core.LocaleCy
			req.URL.Path = strings.TrimPrefix(p, welshPrefix)
			if req.URL.Path == "" {
				req.URL.Path = "/"
			}
			req.URL.RawPath = ""
		}
		ctx.Set(contextLocaleKey, l)
		return next(ctx)
	}
}

func contextLocale(ctx echo.Context) core.Locale {
	if l, ok := ctx.Get(contextLocaleKey).(core.Locale); ok {
		return l
	}
	return core.LocaleEn
}

// sessionMiddleware loads the visitor session before the handler runs and saves it after.
func sessionMiddleware(store session.Store, cookieName string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var id string
			if c, err := ctx.Cookie(cookieName); err == nil {
				id = c.Value
			}
			sess, err := session.Load(ctx.Request().Context(), store, id)
			if err != nil {
				return errors.Wrap(err, "loading session")
			}
			ctx.Set(contextSessionKey, sess)
			if sess.ID != id {
				ctx.SetCookie(newCookie(cookieName, sess.ID, ttl))
			}

			herr := next(ctx)
			if err = store.Save(ctx.Request().Context(), sess); err != nil {
				return errors.Wrap(err, "saving session")
			}
			return herr
		}
	}
}

func contextSession(ctx echo.Context) *session.Session {
	sess, _ := ctx.Get(contextSessionKey).(*session.Session)
	return sess
}

// staffMiddleware lets through staff having any of the roles; any staff member when none are given.
func staffMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsStaff && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return staffMiddleware(user.RoleStaffAdmin)
}
