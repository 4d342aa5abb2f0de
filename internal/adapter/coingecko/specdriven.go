package coingecko

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"FolioPulse/internal/domain/models"
	xhttp "FolioPulse/pkg/http"
	"FolioPulse/pkg/logger"
)

const sourceSpecDriven = "coingecko-spec"

// Operation is one callable upstream endpoint resolved from the provider's
// machine-readable API description.
type Operation struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}

// swaggerDoc is the subset of the upstream OpenAPI/Swagger document needed
// to enumerate operations.
type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
	} `json:"paths"`
}

// SpecDrivenAdapter resolves the upstream's available operations from its
// published API description before calling it. Primarily serves endpoint
// discovery; live fetches go through only when the description actually
// advertises the price operation.
type SpecDrivenAdapter struct {
	client  *Client
	specURL string
	log     *logger.Logger

	mu  sync.Mutex
	ops []Operation
}

// NewSpecDrivenAdapter creates the description-driven adapter.
func NewSpecDrivenAdapter(client *Client, specURL string, log *logger.Logger) *SpecDrivenAdapter {
	return &SpecDrivenAdapter{client: client, specURL: specURL, log: log}
}

// Source returns the adapter's source id.
func (a *SpecDrivenAdapter) Source() string { return sourceSpecDriven }

// Operations returns the endpoints advertised by the upstream description,
// fetching and caching the description on first use.
func (a *SpecDrivenAdapter) Operations(ctx context.Context) ([]Operation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ops != nil {
		return a.ops, nil
	}

	var doc swaggerDoc
	err := a.client.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.specURL,
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch api description: %v", models.ErrUpstreamUnavailable, err)
	}
	if len(doc.Paths) == 0 {
		return nil, fmt.Errorf("%w: api description has no paths", models.ErrSchemaMismatch)
	}

	ops := make([]Operation, 0, len(doc.Paths))
	for path, methods := range doc.Paths {
		for method, meta := range methods {
			ops = append(ops, Operation{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: meta.Summary,
			})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	a.ops = ops
	a.log.Info("resolved upstream api description", logger.Int("operations", len(ops)))
	return ops, nil
}

// FetchSnapshots fetches live data through the description-advertised price
// operation. If the description does not advertise it the adapter reports a
// schema mismatch rather than guessing the path.
func (a *SpecDrivenAdapter) FetchSnapshots(ctx context.Context, assetIDs []string, currency string) ([]models.MarketSnapshot, error) {
	ops, err := a.Operations(ctx)
	if err != nil {
		return nil, err
	}
	path, ok := findOperation(ops, "GET", "/simple/price")
	if !ok {
		return nil, fmt.Errorf("%w: description does not advertise a simple price operation", models.ErrSchemaMismatch)
	}

	var resp simplePriceResponse
	err = a.client.GetJSON(ctx, a.Source(), path, map[string][]string{
		"ids":                 {strings.Join(assetIDs, ",")},
		"vs_currencies":       {strings.ToLower(currency)},
		"include_market_cap":  {"true"},
		"include_24hr_vol":    {"true"},
		"include_24hr_change": {"true"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]models.MarketSnapshot, 0, len(assetIDs))
	for _, id := range assetIDs {
		row, ok := resp[id]
		if !ok {
			continue
		}
		snap, err := normalizeSimple(a.Source(), id, currency, row, now)
		if err != nil {
			return nil, err
		}
		snap.Sector = SectorFor(id)
		out = append(out, snap)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no requested asset present in response", models.ErrUpstreamUnavailable)
	}
	return out, nil
}

// Healthy reports whether the api description is retrievable.
func (a *SpecDrivenAdapter) Healthy(ctx context.Context) bool {
	_, err := a.Operations(ctx)
	return err == nil
}

func findOperation(ops []Operation, method, pathSuffix string) (string, bool) {
	for _, op := range ops {
		if op.Method == method && strings.HasSuffix(op.Path, pathSuffix) {
			return op.Path, true
		}
	}
	return "", false
}
