// Package client talks to the `usuarios` gateway over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
)

// StatusError is a non-2xx gateway answer.
type StatusError struct {
	Status int
	Erro   string
}

func (e *StatusError) Error() string {
	if e.Erro == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Erro)
}

// Client is safe for concurrent use.
type Client struct {
	resource *url.URL
	http     *http.Client
	logger   *zap.SugaredLogger
}

// New returns a client for the gateway rooted at baseURL, e.g.
// "http://localhost:8080". A nil httpClient gets a 10 second timeout.
func New(baseURL string, httpClient *http.Client, logger *zap.SugaredLogger) (*Client, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{resource: u.JoinPath("usuarios"), http: httpClient, logger: logger}, nil
}

// List returns every record, newest first.
func (c *Client) List(ctx context.Context) ([]entity.Contact, error) {
	var out []entity.Contact
	if err := c.do(ctx, http.MethodGet, 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns record id. The gateway may answer with an array or a bare
// object; an empty array yields contact.ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (*entity.Contact, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, id, nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []entity.Contact
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode contact %d: %w", id, err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("contact %d: %w", id, contact.ErrNotFound)
		}
		return &list[0], nil
	}
	var one entity.Contact
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode contact %d: %w", id, err)
	}
	return &one, nil
}

// Create stores rec and returns the id assigned by the gateway.
func (c *Client) Create(ctx context.Context, rec *entity.Contact) (int64, error) {
	var res contact.MessageResponse
	if err := c.do(ctx, http.MethodPost, 0, rec, &res); err != nil {
		return 0, err
	}
	return res.ID, nil
}

// Update replaces every field of record id.
func (c *Client) Update(ctx context.Context, id int64, rec *entity.Contact) error {
	return c.do(ctx, http.MethodPut, id, rec, nil)
}

// Delete removes record id. A 404 is reported as contact.ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, id, nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", contact.ErrNotFound, se)
	}
	return err
}

func (c *Client) do(ctx context.Context, method string, id int64, body, out any) error {
	u := *c.resource
	if id != 0 {
		u.RawQuery = url.Values{"id": {strconv.FormatInt(id, 10)}}.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warnw("gateway request failed", "method", method, "id", id, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Status: resp.StatusCode}
		var er contact.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil {
			se.Erro = er.Erro
		}
		c.logger.Debugw("gateway rejected request", "method", method, "id", id, "status", se.Status, "erro", se.Erro)
		return se
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
