package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/processor"
)

func (s *Server) sendError(c fiber.Ctx, err error) error {
	status, detail := errorStatus(err)
	log.Error().
		Err(err).
		Str("path", c.Path()).
		Int("status", status).
		Msg("Request failed")
	return c.Status(status).JSON(ErrorResponse{Error: detail})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: ErrorDetail{Code: "INVALID_REQUEST", Message: message},
	})
}

func queryInt(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return value, nil
}

func (s *Server) healthCheckHandler(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) languagesHandler(c fiber.Ctx) error {
	version, err := queryInt(c, "version", djelia.DefaultVersion)
	if err != nil {
		return badRequest(c, err.Error())
	}

	langs, err := s.processor.Languages(c.Context(), version)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(langs)
}

func (s *Server) translateHandler(c fiber.Ctx) error {
	var req djelia.TranslateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	resp, err := s.processor.Translate(c.Context(), userID(c), req)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(resp)
}

// transcribeRequest reads the multipart upload and the query parameters.
func transcribeRequest(c fiber.Ctx) (djelia.TranscribeRequest, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return djelia.TranscribeRequest{}, fmt.Errorf("file field is required")
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !processor.IsAudioContent(ct) {
		return djelia.TranscribeRequest{}, fmt.Errorf("unsupported content type %q", ct)
	}
	file, err := header.Open()
	if err != nil {
		return djelia.TranscribeRequest{}, fmt.Errorf("could not open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return djelia.TranscribeRequest{}, fmt.Errorf("could not read upload: %w", err)
	}

	version, err := queryInt(c, "version", djelia.DefaultVersion)
	if err != nil {
		return djelia.TranscribeRequest{}, err
	}

	french := false
	if raw := c.Query("translate_to_french"); raw != "" {
		if french, err = strconv.ParseBool(raw); err != nil {
			return djelia.TranscribeRequest{}, fmt.Errorf("translate_to_french must be a boolean")
		}
	}

	filename := processor.UploadFilename(header.Filename, header.Header.Get("Content-Type"))
	return djelia.TranscribeRequest{
		Audio:             djelia.AudioReader(bytes.NewReader(data), filename),
		TranslateToFrench: french,
		Version:           version,
	}, nil
}

func (s *Server) transcribeHandler(c fiber.Ctx) error {
	req, err := transcribeRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := s.processor.Transcribe(c.Context(), userID(c), req)
	if err != nil {
		return s.sendError(c, err)
	}
	if resp.French != nil {
		return c.JSON(resp.French)
	}
	return c.JSON(resp.Segments)
}

// streamWriter reports whether the first segment arrived before the
// response status is chosen.
type streamWriter struct {
	pw      *io.PipeWriter
	once    sync.Once
	ready   chan error
	started atomic.Bool
}

func (w *streamWriter) Write(p []byte) (int, error) {
	w.started.Store(true)
	w.signal(nil)
	return w.pw.Write(p)
}

func (w *streamWriter) signal(err error) {
	w.once.Do(func() { w.ready <- err })
}

func (s *Server) transcribeStreamHandler(c fiber.Ctx) error {
	req, err := transcribeRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	user := userID(c)

	pr, pw := io.Pipe()
	w := &streamWriter{pw: pw, ready: make(chan error, 1)}

	// The response body is read after the handler returns, so the stream
	// cannot use the request context. A client disconnect closes pr.
	go func() {
		err := s.processor.StreamTranscribe(context.Background(), user, req, w)
		w.signal(err)
		if err != nil && w.started.Load() {
			_, detail := errorStatus(err)
			json.NewEncoder(pw).Encode(ErrorResponse{Error: detail})
		}
		pw.Close()
	}()

	if err := <-w.ready; err != nil {
		pr.Close()
		return s.sendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	return c.SendStream(pr)
}

func (s *Server) speechHandler(c fiber.Ctx) error {
	var body speechBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	result, err := s.processor.Synthesize(c.Context(), userID(c), body.request())
	if err != nil {
		return s.sendError(c, err)
	}

	if result.URL != "" {
		return c.JSON(result)
	}
	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.Send(result.Audio)
}

func (s *Server) schemaHandler(c fiber.Ctx) error {
	schema, ok := requestSchemas[c.Params("operation")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "unknown operation " + c.Params("operation")},
		})
	}
	return c.JSON(schema)
}

func (s *Server) historyHandler(c fiber.Ctx) error {
	userID := c.Params("userId")

	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.Query("page_size")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}

	log.Info().Str("user_id", userID).Int("page", page).Msg("Received history request")

	result, err := s.processor.History(c.Context(), userID, page, pageSize)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id":      userID,
		"entries":      result.Entries,
		"total_count":  result.Total,
		"page":         result.Page,
		"page_size":    result.PageSize,
		"total_pages":  result.TotalPages,
		"has_next":     result.Page < result.TotalPages,
		"has_previous": result.Page > 1,
	})
}

func (s *Server) clearHistoryHandler(c fiber.Ctx) error {
	userID := c.Params("userId")
	if err := s.processor.ClearHistory(c.Context(), userID); err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(fiber.Map{"message": "History cleared successfully"})
}
