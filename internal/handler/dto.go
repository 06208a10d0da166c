package handler

import (
	"time"

	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/model"
)

type ReportResponse struct {
	ID            int64   `json:"id"`
	ReportDate    string  `json:"report_date"`
	Date          string  `json:"date"`
	Content       string  `json:"content"`
	BroadcastType string  `json:"broadcast_type"`
	AudioURL      *string `json:"audio_url"`
	IsPushed      bool    `json:"is_pushed"`
	CreatedAt     string  `json:"created_at"`
}

type TodayResponse struct {
	ReportResponse
	Created bool `json:"created"`
}

type HistoryResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type AudioResponse struct {
	ID       int64   `json:"id"`
	AudioURL *string `json:"audio_url"`
}

func toReportResponse(r model.Report) ReportResponse {
	return ReportResponse{
		ID:            r.ID,
		ReportDate:    r.ReportDate.Format(time.DateOnly),
		Date:          broadcast.FormatDate(r.ReportDate),
		Content:       r.Content,
		BroadcastType: r.BroadcastType,
		AudioURL:      r.AudioURL,
		IsPushed:      r.IsPushed,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
