package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apiendpoints "github.com/tunefab/tunefab/pkg/api/types/endpoints"
)

func (c *client) CreateEndpointConfig(
	ctx context.Context, spec apiendpoints.ConfigSpec,
) (apiendpoints.ConfigDetail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return apiendpoints.ConfigDetail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("endpoint-configs"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return apiendpoints.ConfigDetail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return apiendpoints.ConfigDetail{}, err
	}
	defer resp.Body.Close()

	var conf apiendpoints.ConfigDetail
	if err := unmarshalJsonResponse(
		resp, &conf,
		MessageFor{
			Status4xx: fmt.Sprintf("creating endpoint config is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiendpoints.ConfigDetail{}, err
	}
	return conf, nil
}

func (c *client) DeleteEndpointConfig(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("endpoint-configs", name), nil,
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
			Status4xx: fmt.Sprintf("endpoint config:%v cannot be deleted", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}

func (c *client) CreateEndpoint(
	ctx context.Context, spec apiendpoints.Spec,
) (apiendpoints.Detail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return apiendpoints.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("endpoints"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return apiendpoints.Detail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return apiendpoints.Detail{}, err
	}
	defer resp.Body.Close()

	var ep apiendpoints.Detail
	if err := unmarshalJsonResponse(
		resp, &ep,
		MessageFor{
			Status4xx: fmt.Sprintf("creating endpoint is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiendpoints.Detail{}, err
	}
	return ep, nil
}

func (c *client) GetEndpoint(ctx context.Context, name string) (apiendpoints.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("endpoints", name), nil,
	)
	if err != nil {
		return apiendpoints.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return apiendpoints.Detail{}, err
	}
	defer resp.Body.Close()

	var ep apiendpoints.Detail
	if err := unmarshalJsonResponse(
		resp, &ep,
		MessageFor{
			Status4xx: fmt.Sprintf("endpoint:%v is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiendpoints.Detail{}, err
	}
	return ep, nil
}

func (c *client) DeleteEndpoint(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("endpoints", name), nil,
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
			Status4xx: fmt.Sprintf("endpoint:%v cannot be deleted", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}
