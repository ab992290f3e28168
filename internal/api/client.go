// Package api is the single configured request pipeline to the patient-call
// backend. Every call attaches the persisted bearer token, enforces one fixed
// deadline, and normalizes failures into the apperr taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"patientcall/internal/apperr"
	"patientcall/internal/config"
	"patientcall/internal/credstore"
)

// envelope is the uniform response shape the server owns: every endpoint
// answers {success, data, message?}.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   *credstore.Store
	log     zerolog.Logger
}

func NewClient(cfg config.APIConfig, creds *credstore.Store, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		creds:   creds,
		log:     log,
	}
}

// do issues one request and decodes the envelope's data field into out (when
// out is non-nil). Error classification: transport failures are network
// errors, success=false responses are server errors carrying the server's
// message, credential read failures are storage errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.creds.Token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request transport failure")
		return apperr.Wrap(apperr.KindNetwork, "network error - please check your connection", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperr.Wrap(apperr.KindServer, fmt.Sprintf("malformed response (status %d)", resp.StatusCode), err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
		}
		return apperr.New(apperr.KindServer, msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperr.Wrap(apperr.KindServer, "malformed response data", err)
		}
	}
	return nil
}
