package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Invoke posts rows in text/csv to the endpoint and reads back
// the predictions, one per row, in text/csv.
func (c *client) Invoke(ctx context.Context, endpoint string, payload string) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.apipath("endpoints", endpoint, "invocations"),
		strings.NewReader(payload),
	)
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "text/csv")
	req.Header.Add("Accept", "text/csv")

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("invocation is rejected by endpoint:%v", endpoint),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return "", err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
