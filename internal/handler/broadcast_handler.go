package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chanxe/love-plain/internal/audio"
	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/model"
	"github.com/chanxe/love-plain/pkg/llm"

	"github.com/gin-gonic/gin"
)

type BroadcastRunner interface {
	Run(ctx context.Context, date time.Time, trigger broadcast.Trigger) (*broadcast.Result, error)
	Clock() broadcast.Clock
}

type ReportStore interface {
	GetByDate(ctx context.Context, date time.Time) (*model.Report, error)
	List(ctx context.Context, limit, offset int) ([]model.Report, error)
	Count(ctx context.Context) (int, error)
}

type AudioSynthesizer interface {
	SynthesizeReport(ctx context.Context, reportID int64) (string, error)
}

type BroadcastHandler struct {
	pipeline   BroadcastRunner
	repository ReportStore
	audio      AudioSynthesizer
}

// NewBroadcastHandler accepts a nil synthesizer when audio is disabled.
func NewBroadcastHandler(pipeline BroadcastRunner, repository ReportStore, audio AudioSynthesizer) *BroadcastHandler {
	return &BroadcastHandler{pipeline: pipeline, repository: repository, audio: audio}
}

func (h *BroadcastHandler) GetToday(c *gin.Context) {
	today := h.pipeline.Clock().Now()

	result, err := h.pipeline.Run(c.Request.Context(), today, broadcast.TriggerOnDemand)
	if errors.Is(err, llm.ErrConfiguration) {
		slog.Error("broadcast generation is not configured", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Broadcast generation is not configured"})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("broadcast request ended before the report was ready", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Broadcast is still being generated, try again shortly"})
		return
	}
	if err != nil {
		slog.Error("error running broadcast", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate broadcast"})
		return
	}

	c.JSON(http.StatusOK, TodayResponse{
		ReportResponse: toReportResponse(*result.Report),
		Created:        result.Created,
	})
}

func (h *BroadcastHandler) GetByDate(c *gin.Context) {
	date, err := time.Parse(time.DateOnly, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	report, err := h.repository.GetByDate(c.Request.Context(), date)
	if err != nil {
		slog.Error("error fetching report", "date", c.Param("date"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No broadcast for this date"})
		return
	}

	c.JSON(http.StatusOK, toReportResponse(*report))
}

func (h *BroadcastHandler) GetHistory(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	reports, err := h.repository.List(c.Request.Context(), limit, offset)
	if err != nil {
		slog.Error("error fetching reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.Count(c.Request.Context())
	if err != nil {
		slog.Error("error fetching report total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := HistoryResponse{
		Reports: make([]ReportResponse, 0, len(reports)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for _, r := range reports {
		res.Reports = append(res.Reports, toReportResponse(r))
	}

	c.JSON(http.StatusOK, res)
}

func (h *BroadcastHandler) SynthesizeAudio(c *gin.Context) {
	if h.audio == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audio synthesis is disabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	url, err := h.audio.SynthesizeReport(c.Request.Context(), id)
	if errors.Is(err, audio.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		slog.Error("error synthesizing audio", "report_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audio synthesis failed"})
		return
	}

	res := AudioResponse{ID: id}
	if url != "" {
		res.AudioURL = &url
	}
	c.JSON(http.StatusOK, res)
}
