package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorResponse is what the client gets back for a failed request.
type errorResponse struct {
	code    int
	message interface{} // a string or a field -> error map
}

// newAppHTTPErrorHandler renders handler errors as JSON.
// Unexpected errors are logged, and signalShutdown is called when one of them asks for a shutdown.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		resp, known := knownErrorResponse(errors.Cause(err), translator)
		if !known {
			resp = errorResponse{code: http.StatusInternalServerError, message: http.StatusText(http.StatusInternalServerError)}
			logger.Error(resp.message.(string), errors.Wrap(err, resp.message.(string)), requestUser(ctx))
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
		if ctx.Echo().Debug {
			resp.message = err.Error()
		}
		if err := sendErrorResponse(ctx, resp); err != nil {
			logger.Error("sending error response", err)
		}
	}
}

// knownErrorResponse maps the errors clients can act upon to their response.
func knownErrorResponse(err error, translator ut.Translator) (errorResponse, bool) {
	switch e := err.(type) {
	case *echo.HTTPError:
		return httpErrorResponse(e), true
	case validator.ValidationErrors:
		flds := make(map[string]string, len(e))
		for _, fe := range e {
			flds[fe.Field()] = fe.Translate(translator)
		}
		return errorResponse{code: http.StatusBadRequest, message: flds}, true
	case *core.ValidationError:
		return errorResponse{code: http.StatusBadRequest, message: validationMessage(e)}, true
	case *core.NotFoundError:
		return errorResponse{code: http.StatusNotFound, message: e.Error()}, true
	}
	return errorResponse{}, false
}

func httpErrorResponse(e *echo.HTTPError) errorResponse {
	if e == middleware.ErrJWTMissing {
		return errorResponse{code: http.StatusUnauthorized, message: e.Message}
	}
	if inner, ok := e.Internal.(*echo.HTTPError); ok {
		e = inner
	}
	return errorResponse{code: e.Code, message: e.Message}
}

// validationMessage lists the field errors, if any, else the error itself.
func validationMessage(e *core.ValidationError) interface{} {
	if e.Fields == nil {
		return e.Error()
	}
	flds := make(map[string]string, len(e.Fields))
	for _, fe := range e.Fields {
		flds[fe.Field] = fe.Error
	}
	return flds
}

// requestUser identifies the authenticated user, if any, in error reports.
func requestUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Email = claims.Email
	}
	return usr
}

func sendErrorResponse(ctx echo.Context, resp errorResponse) error {
	if ctx.Response().Committed {
		return nil
	}
	if ctx.Request().Method == http.MethodHead {
		return ctx.NoContent(resp.code)
	}
	if m, ok := resp.message.(string); ok {
		return ctx.JSON(resp.code, echo.Map{"error": m})
	}
	return ctx.JSON(resp.code, resp.message)
}
