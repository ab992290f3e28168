package api

import (
	"context"
	"net/http"

	"patientcall/internal/models"
)

func (c *Client) ListNurses(ctx context.Context) ([]models.NurseApplication, error) {
	var apps []models.NurseApplication
	if err := c.do(ctx, http.MethodGet, "/api/nurses", nil, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) ApproveNurse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/nurses/"+id+"/approve", nil, nil, nil)
}

func (c *Client) RejectNurse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/nurses/"+id+"/reject", nil, nil, nil)
}
