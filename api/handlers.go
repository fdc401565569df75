package api

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scentshop/perfumery/pkg/sse"
	"github.com/scentshop/perfumery/pkg/storefront"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Query          string `json:"query"`
	IncludeContext bool   `json:"includeContext"`
	Stream         bool   `json:"stream"`
	Image          string `json:"image,omitempty"`
}

// contextPerfumes is how many catalog entries a grounded answer cites.
const contextPerfumes = 3

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Message: message})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListPerfumes returns the catalog. Filters of "all" match everything.
func (s *Server) handleListPerfumes(c *fiber.Ctx) error {
	param := func(key string) string {
		v := strings.TrimSpace(c.Query(key))
		if strings.EqualFold(v, "all") {
			return ""
		}
		return v
	}

	return c.JSON(s.store.listPerfumes(storefront.PerfumeFilter{
		Query:          param("q"),
		Brand:          param("brand"),
		Concentration:  param("concentration"),
		TargetAudience: param("targetAudience"),
	}))
}

func (s *Server) handleGetPerfume(c *fiber.Ctx) error {
	p, err := s.store.perfume(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "perfume not found")
	}
	return c.JSON(p)
}

func (s *Server) handleListBrands(c *fiber.Ctx) error {
	return c.JSON(s.store.listBrands())
}

func (s *Server) handleAddComment(c *fiber.Ctx) error {
	var in storefront.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	comment, err := s.store.addComment(c.Params("id"), memberID(c), in)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "perfume not found")
	}

	s.logger.Info("review added", "perfume", comment.Perfume, "comment", comment.ID, "rating", comment.Rating)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// handleSummary returns the review digest. ?forceRefresh=true regenerates it.
func (s *Server) handleSummary(c *fiber.Ctx) error {
	result, err := s.store.summary(c.Params("id"), c.QueryBool("forceRefresh"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "perfume not found")
	}
	return c.JSON(result)
}

func (s *Server) handleSimilar(c *fiber.Ctx) error {
	result, err := s.store.similar(c.Params("id"), c.QueryBool("forceRefresh"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "perfume not found")
	}
	return c.JSON(result)
}

// handleChat answers a question, either as a single JSON reply or as a
// stream of chunk events when the request sets stream.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return fail(c, fiber.StatusBadRequest, "query is required")
	}

	reply := s.store.answer(req.Query, req.IncludeContext, req.Image != "")

	if !req.Stream {
		return c.JSON(storefront.ChatReply{
			Reply:     reply,
			Query:     req.Query,
			Timestamp: time.Now().UTC(),
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe blocks each write until fasthttp has consumed it, so chunks
	// reach the client as they are produced and a disconnect surfaces as a
	// write error.
	pr, pw := io.Pipe()
	go s.streamReply(pw, reply)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// streamReply writes reply word by word as chunk events, bracketed by a
// status and a done event.
func (s *Server) streamReply(pw *io.PipeWriter, reply string) {
	defer pw.Close()

	write := func(env sse.Envelope) error {
		frame, err := env.Frame()
		if err != nil {
			return err
		}
		_, err = pw.Write(frame)
		return err
	}

	if err := write(sse.Envelope{Type: sse.TypeStatus, Message: "thinking"}); err != nil {
		s.logger.Debug("chat client went away", "error", err)
		return
	}

	for _, word := range strings.SplitAfter(reply, " ") {
		if delay := s.ChunkDelay(); delay > 0 {
			time.Sleep(delay)
		}
		if err := write(sse.ChunkEnvelope(word)); err != nil {
			if !errors.Is(err, io.ErrClosedPipe) {
				s.logger.Warn("writing chat chunk", "error", err)
			}
			return
		}
	}

	if err := write(sse.Envelope{Type: sse.TypeDone}); err != nil {
		s.logger.Debug("chat client went away", "error", err)
	}
}
