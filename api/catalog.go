package api

import (
	"context"
	"net/http"
	"time"

	"github.com/scentshop/perfumery/pkg/storefront"
)

// storeCatalog serves the MCP tools straight from the in-memory store, so
// tool calls skip the HTTP round trip and the session checks.
type storeCatalog struct {
	store *store
}

var errPerfumeNotFound = &storefront.APIError{StatusCode: http.StatusNotFound, Message: "perfume not found"}

func (c storeCatalog) ListPerfumes(_ context.Context, filter storefront.PerfumeFilter) ([]storefront.Perfume, error) {
	return c.store.listPerfumes(filter), nil
}

func (c storeCatalog) GetPerfume(_ context.Context, id string) (*storefront.Perfume, error) {
	p, err := c.store.perfume(id)
	if err != nil {
		return nil, errPerfumeNotFound
	}
	return &p, nil
}

func (c storeCatalog) ListBrands(_ context.Context) ([]storefront.Brand, error) {
	return c.store.listBrands(), nil
}

func (c storeCatalog) Summary(_ context.Context, id string, forceRefresh bool) (*storefront.SummaryResult, error) {
	result, err := c.store.summary(id, forceRefresh)
	if err != nil {
		return nil, errPerfumeNotFound
	}
	return &result, nil
}

func (c storeCatalog) SimilarPerfumes(_ context.Context, id string, forceRefresh bool) (*storefront.SimilarResult, error) {
	result, err := c.store.similar(id, forceRefresh)
	if err != nil {
		return nil, errPerfumeNotFound
	}
	return &result, nil
}

func (c storeCatalog) ChatOnce(_ context.Context, req storefront.ChatRequest) (*storefront.ChatReply, error) {
	return &storefront.ChatReply{
		Reply:     c.store.answer(req.Query, req.IncludeContext, req.Image != ""),
		Query:     req.Query,
		Timestamp: time.Now().UTC(),
	}, nil
}
