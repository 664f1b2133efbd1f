package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
)

func CreateModelHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec := apimodels.Spec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("model spec is not valid json", err)
		}

		model, err := h.CreateModel(spec)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, model)
	}
}

func DeleteModelHandler(h *hub.Hub, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.DeleteModel(c.Param(nameParam)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
