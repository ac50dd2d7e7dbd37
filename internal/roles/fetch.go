package roles

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Fetcher downloads a contract-database page.
type Fetcher struct {
	client *fasthttp.Client
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

// Fetch returns the response body of a GET on url. ctx's deadline, when
// set, bounds the request.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html")

	if deadline, ok := ctx.Deadline(); ok {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	} else if err := f.client.Do(req, resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}
	// Body is only valid until the response is released.
	return bytes.Clone(resp.Body()), nil
}
