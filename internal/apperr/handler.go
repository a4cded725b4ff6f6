package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Title  string            `json:"title,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message, Title: "validation error", Fields: ve.Fields})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, errorResponse{Error: msg})
			return
		}

		var se *storage.Error
		if errors.As(err, &se) {
			status, title := storageStatus(se.Kind)
			if status >= http.StatusInternalServerError {
				slog.Error("Storage error", "error", err, "kind", se.Kind)
			}
			_ = c.JSON(status, errorResponse{Error: se.Error(), Title: title})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func storageStatus(kind storage.ErrorKind) (int, string) {
	switch kind {
	case storage.KindValidation:
		return http.StatusBadRequest, "validation error"
	case storage.KindNotFound:
		return http.StatusNotFound, "not found"
	case storage.KindPermissionDenied:
		return http.StatusForbidden, "permission denied"
	case storage.KindTransient:
		return http.StatusServiceUnavailable, "temporarily unavailable"
	default:
		return http.StatusInternalServerError, "storage error"
	}
}
