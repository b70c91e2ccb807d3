package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolaware/secretaria/core"
)

var errInternal = "Erro interno do servidor"

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that converts
// our error types into {"erro": <message>, "code": <kind>} payloads.
// signalShutdown is called whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var kind, message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			kind = kindForStatus(code)
			message = fmt.Sprintf("%v", origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			kind = core.KindValidation
			message = origErr[0].Translate(translator)
		case *core.ValidationError:
			code = http.StatusBadRequest
			kind = core.KindValidation
			if len(origErr.Fields) > 0 {
				message = origErr.Fields[0].Error
			} else {
				message = origErr.Error()
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			kind = core.KindNotFound
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			kind = core.KindInternal
			message = errInternal
			logger.Error(http.StatusText(code), errors.Wrap(err, "unhandled error"))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"erro": message, "code": kind})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return core.KindValidation
	case http.StatusNotFound:
		return core.KindNotFound
	default:
		return core.KindInternal
	}
}
