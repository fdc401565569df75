package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scentshop/perfumery/pkg/storefront"
)

var (
	searchToolName    = "search_perfumes"
	searchDescription = "Search the perfume catalog. Matches the query against perfume names, descriptions and ingredients, optionally narrowed by brand id, concentration and target audience."

	perfumeToolName    = "get_perfume"
	perfumeDescription = "Get a single perfume by id, including its description, ingredients and customer reviews."

	brandsToolName    = "list_brands"
	brandsDescription = "List every perfume house in the catalog with its country of origin."

	summaryToolName    = "perfume_summary"
	summaryDescription = "Get the AI summary of a perfume's customer reviews. Set refresh to regenerate it instead of using the cached copy."

	similarToolName    = "similar_perfumes"
	similarDescription = "Find perfumes similar to the given one. Set refresh to recompute the match instead of using the cached result."
)

// defaultSearchLimit caps search results when the caller sets no limit.
const defaultSearchLimit = 10

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query         string `json:"query,omitempty" jsonschema:"free text matched against names, descriptions and ingredients"`
	Brand         string `json:"brand,omitempty" jsonschema:"brand id to filter by"`
	Concentration string `json:"concentration,omitempty" jsonschema:"concentration to filter by, e.g. EDP or EDT"`
	Audience      string `json:"audience,omitempty" jsonschema:"target audience to filter by: male, female or unisex"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 10)"`
}

// PerfumeInfo is the catalog summary of one perfume.
type PerfumeInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Price         float64 `json:"price"`
	Volume        int     `json:"volume_ml"`
	Concentration string  `json:"concentration"`
	Audience      string  `json:"audience"`
	Rating        float64 `json:"rating"`
	InStock       bool    `json:"in_stock"`
}

// SearchOutput represents the output of the search tool.
type SearchOutput struct {
	Query    string        `json:"query,omitempty"`
	Perfumes []PerfumeInfo `json:"perfumes,omitempty"`
	Count    int           `json:"count"`
	Total    int           `json:"total"`
}

// PerfumeInput selects a perfume by id.
type PerfumeInput struct {
	ID      string `json:"id" jsonschema:"the perfume id"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"bypass the cached result"`
}

// Review is a customer review of a perfume.
type Review struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// PerfumeOutput is the full record of one perfume.
type PerfumeOutput struct {
	Perfume     PerfumeInfo `json:"perfume"`
	Description string      `json:"description,omitempty"`
	Ingredients string      `json:"ingredients,omitempty"`
	Reviews     []Review    `json:"reviews,omitempty"`
}

// BrandsInput takes no arguments.
type BrandsInput struct{}

// BrandInfo is one perfume house.
type BrandInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// BrandsOutput represents the output of the brands tool.
type BrandsOutput struct {
	Brands []BrandInfo `json:"brands,omitempty"`
	Count  int         `json:"count"`
}

// SummaryOutput is the review summary of one perfume.
type SummaryOutput struct {
	ID           string `json:"id"`
	Summary      string `json:"summary"`
	Source       string `json:"source"`
	ReviewsCount int    `json:"reviews_count"`
}

// SimilarOutput lists perfumes similar to the requested one.
type SimilarOutput struct {
	ID       string        `json:"id"`
	Source   string        `json:"source"`
	Perfumes []PerfumeInfo `json:"perfumes,omitempty"`
}

// handleSearch processes a catalog search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	s.config.Logger.Debug("MCP search request",
		"query", input.Query,
		"brand", input.Brand,
		"limit", limit,
	)

	perfumes, err := s.config.Catalog.ListPerfumes(ctx, storefront.PerfumeFilter{
		Query:          strings.TrimSpace(input.Query),
		Brand:          input.Brand,
		Concentration:  input.Concentration,
		TargetAudience: input.Audience,
	})
	if err != nil {
		s.config.Logger.Error("failed to search catalog", "error", err)
		return toolError("Failed to search catalog: %v", err), SearchOutput{}, nil
	}

	output := SearchOutput{
		Query: input.Query,
		Total: len(perfumes),
	}
	for _, p := range perfumes[:min(limit, len(perfumes))] {
		output.Perfumes = append(output.Perfumes, perfumeInfo(p))
	}
	output.Count = len(output.Perfumes)

	return toolResult(s, output)
}

func (s *Server) handlePerfume(ctx context.Context, _ *mcp.CallToolRequest, input PerfumeInput) (*mcp.CallToolResult, PerfumeOutput, error) {
	p, err := s.config.Catalog.GetPerfume(ctx, input.ID)
	if err != nil {
		return s.lookupError(input.ID, err), PerfumeOutput{}, nil
	}

	output := PerfumeOutput{
		Perfume:     perfumeInfo(*p),
		Description: p.Description,
		Ingredients: p.Ingredients,
	}
	for _, c := range p.Comments {
		output.Reviews = append(output.Reviews, Review{
			Author:  c.Author.Name,
			Rating:  c.Rating,
			Content: c.Content,
		})
	}

	return toolResult(s, output)
}

func (s *Server) handleBrands(ctx context.Context, _ *mcp.CallToolRequest, _ BrandsInput) (*mcp.CallToolResult, BrandsOutput, error) {
	brands, err := s.config.Catalog.ListBrands(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list brands", "error", err)
		return toolError("Failed to list brands: %v", err), BrandsOutput{}, nil
	}

	output := BrandsOutput{Count: len(brands)}
	for _, b := range brands {
		output.Brands = append(output.Brands, BrandInfo{ID: b.ID, Name: b.Name, Country: b.Country})
	}

	return toolResult(s, output)
}

func (s *Server) handleSummary(ctx context.Context, _ *mcp.CallToolRequest, input PerfumeInput) (*mcp.CallToolResult, SummaryOutput, error) {
	result, err := s.config.Catalog.Summary(ctx, input.ID, input.Refresh)
	if err != nil {
		return s.lookupError(input.ID, err), SummaryOutput{}, nil
	}

	return toolResult(s, SummaryOutput{
		ID:           input.ID,
		Summary:      result.Summary,
		Source:       result.Source,
		ReviewsCount: result.ReviewsCount,
	})
}

func (s *Server) handleSimilar(ctx context.Context, _ *mcp.CallToolRequest, input PerfumeInput) (*mcp.CallToolResult, SimilarOutput, error) {
	result, err := s.config.Catalog.SimilarPerfumes(ctx, input.ID, input.Refresh)
	if err != nil {
		return s.lookupError(input.ID, err), SimilarOutput{}, nil
	}

	output := SimilarOutput{ID: input.ID, Source: result.Source}
	for _, p := range result.Perfumes {
		output.Perfumes = append(output.Perfumes, perfumeInfo(p))
	}

	return toolResult(s, output)
}

func perfumeInfo(p storefront.Perfume) PerfumeInfo {
	return PerfumeInfo{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand.Label(),
		Price:         p.Price,
		Volume:        p.Volume,
		Concentration: p.Concentration,
		Audience:      p.TargetAudience,
		Rating:        p.AverageRating,
		InStock:       p.Stock > 0,
	}
}

// lookupError reports a failed per-perfume lookup as a tool error.
func (s *Server) lookupError(id string, err error) *mcp.CallToolResult {
	if storefront.IsNotFound(err) {
		return toolError("Perfume %s not found", id)
	}
	s.config.Logger.Error("perfume lookup failed", "id", id, "error", err)
	return toolError("Failed to look up perfume %s: %v", id, err)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// toolResult pairs the structured output with its JSON text, which clients
// without structured content support read instead.
func toolResult[T any](s *Server, output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal tool output", "error", err)
		var zero T
		return toolError("Failed to serialize results: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
