// Package linz is the transport adapter for the LINZ Data Service WFS
// endpoint serving the district valuation roll. It turns a matcher.Query
// into a CQL-filtered GetFeature request and maps the GeoJSON feature
// properties back onto ValuationRecords. Everything above this package
// only sees "candidates, empty list, or a transport error".
package linz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/propscan/propscan-cli/internal/config"
	"github.com/propscan/propscan-cli/internal/matcher"
	"github.com/propscan/propscan-cli/internal/model"
)

// Client queries the valuation roll over WFS.
type Client struct {
	http    *http.Client
	cfg     config.LINZConfig
	limiter *rate.Limiter
}

// NewClient builds a Client from config.
func NewClient(cfg config.LINZConfig) *Client {
	qps := cfg.RateLimitQPS
	if qps <= 0 {
		qps = 5
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout()},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
	}
}

// featureCollection is the slice of the WFS GeoJSON response we care about.
type featureCollection struct {
	Features []struct {
		Properties model.ValuationRecord `json:"properties"`
	} `json:"features"`
}

// QueryValuations implements matcher.Querier.
func (c *Client) QueryValuations(ctx context.Context, q matcher.Query) ([]model.ValuationRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "linz: rate limit wait")
	}

	endpoint := fmt.Sprintf("%s;key=%s/wfs/%s/", c.cfg.BaseURL, c.cfg.Key, c.cfg.Layer)
	params := url.Values{
		"service":      {"WFS"},
		"version":      {"2.0.0"},
		"request":      {"GetFeature"},
		"typeName":     {"data.linz.govt.nz:" + c.cfg.Layer},
		"count":        {fmt.Sprintf("%d", c.count())},
		"outputFormat": {"json"},
		"CQL_FILTER":   {BuildCQL(q)},
	}

	body, err := c.get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "linz: decode response")
	}

	records := make([]model.ValuationRecord, 0, len(fc.Features))
	for _, f := range fc.Features {
		records = append(records, f.Properties)
	}
	zap.L().Debug("linz query",
		zap.String("cql", BuildCQL(q)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// get performs the request with a single long-wait retry after a 429.
// Other non-2xx statuses fail immediately; the resolver treats any error
// here as a missed attempt and moves on.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		wait := time.Duration(c.cfg.RetryAfter429Secs) * time.Second
		zap.L().Warn("linz: rate limited, backing off once", zap.Duration("wait", wait))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "linz: backoff interrupted")
		case <-timer.C:
		}
		resp, err = c.do(ctx, rawURL)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("linz: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "linz: read body")
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linz: build request")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linz: request")
	}
	return resp, nil
}

func (c *Client) count() int {
	if c.cfg.Count > 0 {
		return c.cfg.Count
	}
	return 10
}

// BuildCQL renders a matcher.Query as a CQL filter: street-number equality,
// case-insensitive street-name containment, and TA membership OR'd when
// more than one code is given.
func BuildCQL(q matcher.Query) string {
	var clauses []string

	if q.StreetNumber != "" {
		clauses = append(clauses, fmt.Sprintf("situation_number = '%s'", escapeCQL(q.StreetNumber)))
	}
	if q.StreetContains != "" {
		clauses = append(clauses, fmt.Sprintf("situation_name ILIKE '%%%s%%'", escapeCQL(q.StreetContains)))
	}
	switch len(q.TACodes) {
	case 0:
	case 1:
		clauses = append(clauses, fmt.Sprintf("district_ta_code = %d", q.TACodes[0]))
	default:
		parts := make([]string, len(q.TACodes))
		for i, ta := range q.TACodes {
			parts[i] = fmt.Sprintf("district_ta_code = %d", ta)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	return strings.Join(clauses, " AND ")
}

// escapeCQL doubles single quotes for CQL string literals.
func escapeCQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
