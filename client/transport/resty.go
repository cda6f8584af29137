package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Resty adapts a resty.Client to the [Transport] interface.
type Resty struct {
	client *resty.Client
}

// NewResty creates a Resty transport with the specified timeout.
func NewResty(timeout time.Duration) *Resty {
	c := resty.New()
	c.SetTimeout(timeout)
	return &Resty{client: c}
}

// NewRestyFromClient wraps an already configured resty.Client.
func NewRestyFromClient(c *resty.Client) *Resty {
	if c == nil {
		c = resty.New()
	}
	return &Resty{client: c}
}

// Send performs req through resty. Non-2xx statuses are returned, not treated as errors.
func (r *Resty) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	rr := r.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		rr.SetHeaderMultiValues(req.Header)
	}
	if len(req.Body) > 0 {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("resty execute: %w", err)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header().Clone(),
		Body:       resp.Body(),
	}, nil
}
