package storage

import (
	"context"

	"ramen-dashboard/models"
)

// RunWriter is the interface any export backend must satisfy.
type RunWriter interface {
	Write(ctx context.Context, run *models.Run) error
	Close() error
}
