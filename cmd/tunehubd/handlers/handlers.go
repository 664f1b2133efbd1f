// Package handlers exposes the emulated hub over the REST API that the
// tune CLI speaks.
package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
)

// asAPIError maps hub errors onto wire error responses.
func asAPIError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, hub.ErrNotFound):
		return apierr.NotFound()
	case errors.Is(err, hub.ErrConflict):
		return apierr.Conflict(err.Error())
	case errors.Is(err, hub.ErrBadInput):
		return apierr.BadRequest(err.Error(), nil)
	default:
		return apierr.InternalServerError(err)
	}
}
