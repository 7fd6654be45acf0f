package handler

import (
	"log/slog"
	"net/http"

	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/requestid"
)

// NewErrorHandler returns an ErrorHandler that logs err and writes the JSON
// error envelope. Client errors are logged at warn level, server errors at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		status, _ := ErrorStatus(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
