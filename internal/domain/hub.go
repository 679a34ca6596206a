package domain

import (
	"context"
)

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	ActiveSessions() int64
}

type ReportStats struct {
	Solved    int64 `json:"solved"`
	TimeUp    int64 `json:"timeUp"`
	Abandoned int64 `json:"abandoned"`
}

type HealthCheckResponse struct {
	ActiveSessions int64       `json:"activeSessions"`
	Reports        ReportStats `json:"reports"`
}

type ReportUseCase interface {
	Run(ctx context.Context, reports <-chan PlayReport)
	Record(ctx context.Context, report PlayReport)
	Stats() ReportStats
}

type ReportRepository interface {
	Report(ctx context.Context, addr string, report PlayReport) error
	HealthCheck(ctx context.Context, addr string) (*HealthCheckResponse, error)
}
