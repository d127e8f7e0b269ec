package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/types"
)

// serviceError maps domain sentinel errors to HTTP status codes. Unknown
// errors surface as 500 without leaking internals.
func serviceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, types.ErrNoCatalog):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no rule catalog loaded")
	case errors.Is(err, types.ErrRuleNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "rule not found")
	case errors.Is(err, types.ErrEmptySnapshot):
		return echo.NewHTTPError(http.StatusBadRequest, "patient snapshot is empty")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
