package ports

import (
	"context"

	"github.com/bnema/memefi-tapper/internal/domain"
)

type SnapshotRepository interface {
	Get(ctx context.Context, sessionName string) (domain.SessionSnapshot, error)
	List(ctx context.Context) ([]domain.SessionSnapshot, error)
	Save(ctx context.Context, snapshot domain.SessionSnapshot) error
}
