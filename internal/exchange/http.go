package exchange

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"
)

// getBody performs a GET and returns a copy of the response body.
// The context deadline, if any, bounds the request.
func getBody(ctx context.Context, client *fasthttp.Client, uri string, query map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	for k, v := range query {
		args.Set(k, v)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", uri, err)
	}

	body := append([]byte(nil), resp.Body()...)
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d: %s", uri, resp.StatusCode(), body)
	}
	return body, nil
}
