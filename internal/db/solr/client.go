// Package solr queries a Solr core over its JSON HTTP API.
package solr

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
	"strings"
	"time"

	"github.com/kailas-cloud/rigel/index"
)

var (
	_ index.Client = (*Client)(nil)
	_ index.Pinger = (*Client)(nil)
)

// DefaultTimeout bounds each HTTP request when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Config holds connection parameters for a Solr core.
type Config struct {
	// BaseURL is the Solr root, e.g. http://localhost:8983/solr.
	BaseURL string
	Core    string
	Timeout time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client implements index.Client for one Solr core.
type Client struct {
	base string
	http *http.Client
}

// New validates cfg and creates a client. No request is made.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.Core == "" {
		return nil, errors.New("core is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/") + "/" + url.PathEscape(cfg.Core),
		http: hc,
	}, nil
}

// Dialect reports Lucene syntax.
func (c *Client) Dialect() index.Dialect { return index.Lucene }

// Search posts the request to the core's select handler.
func (c *Client) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	op := index.OpSearch
	if req.Grouped() {
		op = index.OpGroup
	}

	var body selectResponse
	if err := c.post(ctx, "/select", encodeParams(req), &body); err != nil {
		return nil, &index.Error{Op: op, Err: err}
	}

	if !req.Grouped() {
		return &index.Response{Total: body.Response.NumFound, Documents: body.Response.Docs}, nil
	}

	grouped, ok := body.Grouped[req.GroupField]
	if !ok {
		return nil, &index.Error{Op: op, Err: fmt.Errorf("response has no groups for %s", req.GroupField)}
	}
	resp := &index.Response{Total: grouped.Matches}
	for _, g := range grouped.Groups {
		if g.GroupValue == nil || len(g.DocList.Docs) == 0 {
			continue
		}
		resp.Groups = append(resp.Groups, index.Group{
			Value:     index.FormatValue(g.GroupValue),
			Documents: g.DocList.Docs,
		})
	}
	return resp, nil
}

// Ping calls the core's ping handler.
func (c *Client) Ping(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/admin/ping", url.Values{"wt": {"json"}}, &body); err != nil {
		return &index.Error{Op: index.OpPing, Err: err}
	}
	if !strings.EqualFold(body.Status, "ok") {
		return &index.Error{Op: index.OpPing, Err: fmt.Errorf("%w: status %q", index.ErrUnavailable, body.Status)}
	}
	return nil
}

// encodeParams maps a request onto select handler parameters.
func encodeParams(req *index.Request) url.Values {
	q := req.Query
	if strings.TrimSpace(q) == "" {
		q = index.Lucene.MatchAll()
	}

	v := url.Values{}
	v.Set("q", q)
	v.Set("wt", "json")
	for _, f := range req.Filters {
		if strings.TrimSpace(f) != "" {
			v.Add("fq", f)
		}
	}
	if len(req.Fields) > 0 {
		v.Set("fl", strings.Join(req.Fields, ","))
	}
	if req.Limit > 0 {
		v.Set("rows", strconv.Itoa(req.Limit))
	}
	if req.Grouped() {
		v.Set("group", "true")
		v.Set("group.field", req.GroupField)
		v.Set("group.limit", strconv.Itoa(req.EffectiveGroupLimit()))
		v.Set("group.format", "grouped")
		v.Set("group.main", "false")
	}
	return v
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(hreq, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(hreq, out)
}

func (c *Client) do(hreq *http.Request, out any) error {
	hreq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(hreq)
	if err != nil {
		return fmt.Errorf("%w: %w", index.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, data)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var e errorResponse
	msg := http.StatusText(status)
	if json.Unmarshal(body, &e) == nil && e.Error.Msg != "" {
		msg = e.Error.Msg
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", index.ErrIndexNotFound, msg)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", index.ErrUnavailable, status, msg)
	default:
		return fmt.Errorf("status %d: %s", status, msg)
	}
}
