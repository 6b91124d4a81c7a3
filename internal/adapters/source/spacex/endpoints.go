package spacex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"launchpipe/internal/core/launch"
	perr "launchpipe/internal/platform/errors"

	"github.com/shopspring/decimal"
)

const (
	pathLatest   = "/launches/latest"
	pathLaunches = "/launches"
	pathQuery    = "/launches/query"
	pathPayloads = "/payloads/query"

	payloadChunk = 200
)

// ErrPageCap is returned when the filtered query still has pages after MaxPages
var ErrPageCap = errors.New("spacex: page cap reached")

// GetLatest returns the most recent launch
func (c *Client) GetLatest(ctx context.Context) (launch.RawRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, pathLatest, nil)
	if err != nil {
		return launch.RawRecord{}, err
	}
	var out launch.RawRecord
	if err := decode(resp, pathLatest, &out); err != nil {
		return launch.RawRecord{}, err
	}
	return out, nil
}

// GetAll returns the full launch history
func (c *Client) GetAll(ctx context.Context) ([]launch.RawRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, pathLaunches, nil)
	if err != nil {
		return nil, err
	}
	var out []launch.RawRecord
	if err := decode(resp, pathLaunches, &out); err != nil {
		return nil, err
	}
	c.log.Info().Int("launches", len(out)).Msg("spacex fetched all launches")
	return out, nil
}

// GetSince pages through launches dated at or after since, oldest first
func (c *Client) GetSince(ctx context.Context, since time.Time) ([]launch.RawRecord, error) {
	var out []launch.RawRecord
	iso := since.UTC().Format(time.RFC3339Nano)
	for n := 1; ; n++ {
		if n > c.opts.MaxPages {
			c.log.Warn().Int("max_pages", c.opts.MaxPages).Msg("spacex page cap reached")
			return nil, perr.Wrap(ErrPageCap, perr.ErrorCodeUnavailable, "spacex filtered query")
		}
		body, err := json.Marshal(query{
			Query: map[string]any{"date_utc": map[string]string{"$gte": iso}},
			Options: queryOptions{
				Sort:  map[string]int{"date_utc": 1},
				Limit: c.opts.PageSize,
				Page:  n,
			},
		})
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "spacex encode query")
		}
		resp, err := c.do(ctx, http.MethodPost, pathQuery, body)
		if err != nil {
			return nil, err
		}
		var pg page[launch.RawRecord]
		if err := decode(resp, pathQuery, &pg); err != nil {
			return nil, err
		}
		out = append(out, pg.Docs...)
		if n == 1 || n%10 == 0 {
			c.log.Debug().Int("page", n).Int("total_pages", pg.TotalPages).Int("total_docs", pg.TotalDocs).Msg("spacex query page")
		}
		if !pg.HasNextPage || len(pg.Docs) == 0 {
			break
		}
	}
	c.log.Info().Time("since", since).Int("launches", len(out)).Msg("spacex fetched launches since")
	return out, nil
}

// PayloadMasses maps payload id to mass; payloads without a mass are absent
func (c *Client) PayloadMasses(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	off := false
	for start := 0; start < len(ids); start += payloadChunk {
		end := min(start+payloadChunk, len(ids))
		body, err := json.Marshal(query{
			Query: map[string]any{"_id": map[string][]string{"$in": ids[start:end]}},
			Options: queryOptions{
				Select:     map[string]int{"mass_kg": 1},
				Pagination: &off,
			},
		})
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "spacex encode payload query")
		}
		resp, err := c.do(ctx, http.MethodPost, pathPayloads, body)
		if err != nil {
			return nil, err
		}
		var pg page[payload]
		if err := decode(resp, pathPayloads, &pg); err != nil {
			return nil, err
		}
		for _, p := range pg.Docs {
			if p.MassKg != nil {
				out[p.ID] = *p.MassKg
			}
		}
	}
	return out, nil
}

// Enrich sets PayloadMassKg on each raw launch to the sum of its payload masses
// a zero sum (no payloads, or none with a mass) leaves the field nil
func (c *Client) Enrich(ctx context.Context, raws []launch.RawRecord) error {
	if !c.opts.MassLookup {
		return nil
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, r := range raws {
		for _, id := range r.Payloads {
			if _, ok := seen[id]; !ok && id != "" {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	masses, err := c.PayloadMasses(ctx, ids)
	if err != nil {
		return err
	}
	for i := range raws {
		sum := decimal.Zero
		for _, id := range raws[i].Payloads {
			if m, ok := masses[id]; ok {
				sum = sum.Add(m)
			}
		}
		if sum.IsZero() {
			raws[i].PayloadMassKg = nil
			continue
		}
		raws[i].PayloadMassKg = &sum
	}
	return nil
}
