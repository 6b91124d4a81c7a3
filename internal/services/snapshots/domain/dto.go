// Package domain holds the snapshot read DTOs and ports
package domain

import (
	"context"

	"launchpipe/internal/core/aggregate"
	"launchpipe/internal/core/launch"
)

// HistoryInput bounds a history or trend query
type HistoryInput struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"20"`
}

// LaunchInput names one launch
type LaunchInput struct {
	ID string `json:"id" validate:"required,max=64,printascii" example:"5eb87cd9ffd86e000604b32a"`
}

// ServicePort is the read side over snapshots and launches
type ServicePort interface {
	Latest(ctx context.Context) (launch.Snapshot, error)
	History(ctx context.Context, in HistoryInput) ([]launch.Snapshot, error)
	Trend(ctx context.Context, in HistoryInput) ([]aggregate.TrendPoint, error)
	Launch(ctx context.Context, in LaunchInput) (launch.Record, error)
}
