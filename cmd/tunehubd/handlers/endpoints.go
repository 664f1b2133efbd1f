package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apiep "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
)

func CreateEndpointConfigHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec := apiep.ConfigSpec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("endpoint config spec is not valid json", err)
		}

		config, err := h.CreateEndpointConfig(spec)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, config)
	}
}

func DeleteEndpointConfigHandler(h *hub.Hub, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.DeleteEndpointConfig(c.Param(nameParam)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func CreateEndpointHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec := apiep.Spec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("endpoint spec is not valid json", err)
		}

		endpoint, err := h.CreateEndpoint(spec)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, endpoint)
	}
}

func GetEndpointHandler(h *hub.Hub, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		endpoint, err := h.GetEndpoint(c.Param(nameParam))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, endpoint)
	}
}

func DeleteEndpointHandler(h *hub.Hub, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.DeleteEndpoint(c.Param(nameParam)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// InvokeHandler answers text/csv predictions for text/csv feature rows.
func InvokeHandler(h *hub.Hub, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		predictions, err := h.Invoke(c.Param(nameParam), string(payload))
		if err != nil {
			return asAPIError(err)
		}
		return c.Blob(http.StatusOK, "text/csv", []byte(predictions))
	}
}
