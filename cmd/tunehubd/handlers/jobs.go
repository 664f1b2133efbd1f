package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

func SubmitJobHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec := apijobs.Spec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("job spec is not valid json", err)
		}

		job, err := h.SubmitJob(spec)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func GetJobHandler(h *hub.Hub, jobIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.GetJob(c.Param(jobIdParam))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func FindJobsHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := hub.FindJobQuery{
			Name: splitIfNotEmpty(c.QueryParam("name")),
		}

		for _, s := range splitIfNotEmpty(c.QueryParam("status")) {
			status := apijobs.Status(s)
			if !status.Known() {
				return apierr.BadRequest(
					`"status" should be one of "queued", "running", "stopping", "succeeded", "failed" or "stopped"`,
					nil,
				)
			}
			query.Status = append(query.Status, status)
		}

		if since := c.QueryParam("since"); since != "" {
			t, err := rfctime.ParseRFC3339DateTime(since)
			if err != nil {
				return apierr.BadRequest(`"since" should be a RFC3339 date-time format`, err)
			}
			_t := t.Time()
			query.CreatedSince = &_t
		}

		if duration := c.QueryParam("duration"); duration != "" {
			if query.CreatedSince == nil {
				return apierr.BadRequest(`"duration" should be used with "since"`, nil)
			}
			d, err := time.ParseDuration(duration)
			if err != nil {
				return apierr.BadRequest(`"duration" should be a Go duration format`, err)
			}
			_t := query.CreatedSince.Add(d)
			query.CreatedUntil = &_t
		}

		return c.JSON(http.StatusOK, h.FindJobs(query))
	}
}

func GetCandidatesHandler(h *hub.Hub, jobIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		candidates, err := h.Candidates(c.Param(jobIdParam))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, candidates)
	}
}

func StopJobHandler(h *hub.Hub, jobIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.StopJob(c.Param(jobIdParam))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func DeleteJobHandler(h *hub.Hub, jobIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.DeleteJob(c.Param(jobIdParam)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func splitIfNotEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
