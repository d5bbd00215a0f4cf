package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// wantsJSON reports whether the client expects JSON rather than a page: API calls and AJAX requests.
func wantsJSON(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api/") || isAjax(ctx)
}

func isAjax(ctx echo.Context) bool {
	req := ctx.Request()
	return req.Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest" ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

var errorTitles = map[int]core.Copy{
	http.StatusBadRequest:          {En: "There is a problem", Cy: "Mae yna broblem"},
	http.StatusUnauthorized:        {En: "Please log in", Cy: "Mewngofnodwch"},
	http.StatusForbidden:           {En: "Permission denied", Cy: "Caniatâd wedi'i wrthod"},
	http.StatusNotFound:            {En: "Page not found", Cy: "Heb ganfod y dudalen"},
	http.StatusInternalServerError: {En: "Sorry, something went wrong", Cy: "Mae'n ddrwg gennym, aeth rhywbeth o'i le"},
}

func errorTitle(code int) core.Copy {
	if t, ok := errorTitles[code]; ok {
		return t
	}
	return core.Copy{En: http.StatusText(code), Cy: http.StatusText(code)}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Pages get the error page and API or AJAX calls a JSON body, both with the status code preserved.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case application.ErrNotFound, user.ErrNotFound, form.ErrFormNotFound, form.ErrStepNotFound, materials.ErrUnknownMaterial:
				code = http.StatusNotFound
				message = http.StatusText(code)
			case application.ErrAlreadySubmitted:
				code = http.StatusConflict
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Username = claims.Username
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case wantsJSON(ctx):
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		default:
			text, _ := message.(string)
			err = ctx.Render(code, "error", newPage(ctx, errorTitle(code), echo.Map{"code": code, "message": text}))
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
