// Package http is a worked DataSource implementation fetching JSON over
// HTTP. It is not part of the core: muse never depends on net/http, this
// package exists to show how an application wires a real data source into
// the evaluator.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samsarahq/go/oops"
	"golang.org/x/time/rate"

	"github.com/samsarahq/muse"
)

// Client is shared by every Request built against the same backend: one
// rate limiter and one *http.Client, so concurrent fetches issued by the
// evaluator within a level don't overwhelm the target.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	base    string
}

// NewClient returns a Client throttled to rps requests per second, bursting
// up to burst at a time.
func NewClient(base string, rps float64, burst int) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		base:    base,
	}
}

// Request is a single GET against Client.base + URL with query Params. Two
// Requests with the same URL and Params are the same identity and will be
// deduplicated by the evaluator.
type Request struct {
	Client *Client
	URL    string
	Params map[string]string
}

type identity struct {
	url    string
	params string
}

// Identity implements muse.Source.
func (r *Request) Identity() interface{} {
	return identity{url: r.URL, params: canonicalParams(r.Params)}
}

func canonicalParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s&", k, params[k])
	}
	return b.String()
}

// Fetch implements muse.DataSource. It issues one GET request, rate-limited
// against Client, and decodes the JSON body into a generic map.
func (r *Request) Fetch(ctx context.Context, env *muse.Options) (interface{}, error) {
	if err := r.Client.limiter.Wait(ctx); err != nil {
		return nil, oops.Wrapf(err, "rate limiter wait for %s", r.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Client.base+r.URL, nil)
	if err != nil {
		return nil, oops.Wrapf(err, "building request for %s", r.URL)
	}
	q := req.URL.Query()
	for k, v := range r.Params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := r.Client.http.Do(req)
	if err != nil {
		return nil, oops.Wrapf(err, "fetching %s", r.URL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Wrapf(err, "reading response body for %s", r.URL)
	}
	if resp.StatusCode >= 400 {
		return nil, oops.Errorf("%s returned status %d: %s", r.URL, resp.StatusCode, body)
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, oops.Wrapf(err, "decoding response body for %s", r.URL)
	}
	return map[string]interface{}{"body": decoded}, nil
}
