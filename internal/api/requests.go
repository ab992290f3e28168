package api

import (
	"context"
	"net/http"
	"net/url"

	"patientcall/internal/models"
)

type RequestFilters struct {
	Status   models.RequestStatus
	Priority models.RequestPriority
}

func (f RequestFilters) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	return q
}

type CreateRequestInput struct {
	Description string                 `json:"description"`
	Priority    models.RequestPriority `json:"priority"`
}

func (c *Client) ListRequests(ctx context.Context, filters RequestFilters) ([]models.CareRequest, error) {
	var requests []models.CareRequest
	if err := c.do(ctx, http.MethodGet, "/api/requests", filters.query(), nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) CreateRequest(ctx context.Context, input CreateRequestInput) (models.CareRequest, error) {
	var request models.CareRequest
	if err := c.do(ctx, http.MethodPost, "/api/requests", nil, input, &request); err != nil {
		return models.CareRequest{}, err
	}
	return request, nil
}

type updateStatusInput struct {
	Status models.RequestStatus `json:"status"`
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (models.CareRequest, error) {
	var request models.CareRequest
	if err := c.do(ctx, http.MethodPut, "/api/requests/"+id+"/status", nil, updateStatusInput{Status: status}, &request); err != nil {
		return models.CareRequest{}, err
	}
	return request, nil
}
