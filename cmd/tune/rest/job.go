package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

func (c *client) SubmitJob(ctx context.Context, spec apijobs.Spec) (apijobs.Detail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return apijobs.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("jobs"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return apijobs.Detail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return apijobs.Detail{}, err
	}
	defer resp.Body.Close()

	var job apijobs.Detail
	if err := unmarshalJsonResponse(
		resp, &job,
		MessageFor{
			Status4xx: fmt.Sprintf("submitting job is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apijobs.Detail{}, err
	}
	return job, nil
}

func (c *client) GetJob(ctx context.Context, jobId string) (apijobs.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("jobs", jobId), nil,
	)
	if err != nil {
		return apijobs.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return apijobs.Detail{}, err
	}
	defer resp.Body.Close()

	var job apijobs.Detail
	if err := unmarshalJsonResponse(
		resp, &job,
		MessageFor{
			Status4xx: fmt.Sprintf("jobId:%v is not found", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apijobs.Detail{}, err
	}
	return job, nil
}

func (c *client) FindJob(
	ctx context.Context,
	query FindJobParameter,
) ([]apijobs.Summary, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("jobs"), nil)
	if err != nil {
		return nil, err
	}

	// set query values
	q := req.URL.Query()
	paramMap := map[string][]string{
		"name":   query.Name,
		"status": query.Status,
	}

	if query.Since != nil {
		paramMap["since"] = []string{query.Since.Format(rfctime.RFC3339DateTimeFormatZ)}
	}

	if query.Duration != nil {
		paramMap["duration"] = []string{query.Duration.String()}
	}

	for key, value := range paramMap {
		if len(value) > 0 {
			q.Add(key, strings.Join(value, ","))
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]apijobs.Summary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return found, nil
}

func (c *client) GetCandidates(ctx context.Context, jobId string) ([]apijobs.Candidate, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("jobs", jobId, "candidates"), nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	candidates := make([]apijobs.Candidate, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &candidates,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get candidates of jobId:%v", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (c *client) StopJob(ctx context.Context, jobId string) (apijobs.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("jobs", jobId, "stop"), nil,
	)
	if err != nil {
		return apijobs.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return apijobs.Detail{}, err
	}
	defer resp.Body.Close()

	var job apijobs.Detail
	if err := unmarshalJsonResponse(
		resp, &job,
		MessageFor{
			Status4xx: fmt.Sprintf("jobId:%v cannot be stopped", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apijobs.Detail{}, err
	}
	return job, nil
}

func (c *client) DeleteJob(ctx context.Context, jobId string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("jobs", jobId), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("jobId:%v cannot be deleted", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}
