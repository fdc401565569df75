package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/scentshop/perfumery/pkg/sse"
)

// ErrEmptyQuery is returned for a chat request with no question.
var ErrEmptyQuery = errors.New("chat query is empty")

func refreshQuery(forceRefresh bool) url.Values {
	if !forceRefresh {
		return nil
	}
	return url.Values{"forceRefresh": {"true"}}
}

// SimilarPerfumes asks the assistant for perfumes similar to id. Set
// forceRefresh to bypass the backend's cached analysis.
func (c *Client) SimilarPerfumes(ctx context.Context, id string, forceRefresh bool) (*SimilarResult, error) {
	r, err := newRequest(http.MethodGet, "/ai/similar/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	r.query = refreshQuery(forceRefresh)

	result := &SimilarResult{}
	if err := c.doJSON(ctx, r, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Summary returns the AI digest of a perfume's reviews.
func (c *Client) Summary(ctx context.Context, id string, forceRefresh bool) (*SummaryResult, error) {
	r, err := newRequest(http.MethodGet, "/ai/summary/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	r.query = refreshQuery(forceRefresh)

	result := &SummaryResult{}
	if err := c.doJSON(ctx, r, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ChatOnce asks the assistant and waits for the whole reply.
func (c *Client) ChatOnce(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	r, err := newRequest(http.MethodPost, "/ai/chat", req.body(false))
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{}
	if err := c.doJSON(ctx, r, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// StreamChat asks the assistant and hands each chunk of the reply to sink as
// it arrives. Establishing the stream follows the retry policy; once the
// body is flowing nothing is retried.
//
// Cancelling ctx stops the stream and StreamChat returns nil. The content
// delivered before cancellation is the partial reply.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, sink sse.Sink) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	r, err := newRequest(http.MethodPost, "/ai/chat", req.body(true))
	if err != nil {
		return err
	}
	r.accept = "text/event-stream"

	resp, err := c.send(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("opening chat stream: %w", err)
	}
	defer resp.Body.Close()

	var opts []sse.Option
	if c.maxFrame > 0 {
		opts = append(opts, sse.WithMaxPending(c.maxFrame))
	}

	if err := sse.NewDecoder(opts...).Consume(ctx, resp.Body, sink); err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	return nil
}
