package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
)

func (c *client) CreateModel(ctx context.Context, spec apimodels.Spec) (apimodels.Detail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return apimodels.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("models"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return apimodels.Detail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return apimodels.Detail{}, err
	}
	defer resp.Body.Close()

	var model apimodels.Detail
	if err := unmarshalJsonResponse(
		resp, &model,
		MessageFor{
			Status4xx: fmt.Sprintf("creating model is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apimodels.Detail{}, err
	}
	return model, nil
}

func (c *client) DeleteModel(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("models", name), nil,
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
			Status4xx: fmt.Sprintf("model:%v cannot be deleted", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}
