package api

import (
	"errors"
	"strconv"

	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/internal/services/forecast"
	"OeeForecast/internal/usecase"
	xhttp "OeeForecast/pkg/http"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the caller's user id for per-user resources.
const HeaderUserID = "X-User-ID"

// toAppError maps domain and usecase errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var ferr *forecast.Error
	switch {
	case errors.As(err, &ferr) && ferr.Kind == forecast.KindInsufficientData:
		return xhttp.BadRequestCode("ERR_INSUFFICIENT_DATA", "", ferr.Error()).
			WithParam("minObservations", forecast.MinObservations).
			WithError(err)
	case errors.As(err, &ferr) && ferr.Kind == forecast.KindInvalidParameter:
		return xhttp.BadRequestCode("ERR_INVALID_PARAMETER", "", ferr.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrQueueDisabled), errors.Is(err, usecase.ErrMailerDisabled):
		return xhttp.ServiceUnavailableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

// userID reads the caller id header. Per-user endpoints reject a missing or malformed id.
func userID(c echo.Context) (int64, *xhttp.AppError) {
	raw := c.Request().Header.Get(HeaderUserID)
	if raw == "" {
		return 0, xhttp.UnauthorizedError(HeaderUserID + " header is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, xhttp.UnauthorizedError(HeaderUserID + " header must be a positive integer")
	}
	return id, nil
}

// optionalUserID is userID without the requirement.
func optionalUserID(c echo.Context) int64 {
	id, _ := strconv.ParseInt(c.Request().Header.Get(HeaderUserID), 10, 64)
	if id < 0 {
		return 0
	}
	return id
}
