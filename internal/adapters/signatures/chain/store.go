package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/memefi-tapper/internal/ports"
)

// Store reads and writes through primary, falling back to the second store
// when primary fails for reasons other than cancellation. A primary miss is
// looked up in the fallback and copied back into primary when found.
type Store struct {
	primary  ports.SignatureStore
	fallback ports.SignatureStore
}

var _ ports.SignatureStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary signature store is nil")
	errNilFallbackStore = errors.New("fallback signature store is nil")
)

func NewStore(primary ports.SignatureStore, fallback ports.SignatureStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func (s *Store) Get(ctx context.Context, sessionName string) (string, bool, error) {
	value, found, err := s.primary.Get(ctx, sessionName)
	if err == nil {
		if found {
			return value, true, nil
		}
		return s.promote(ctx, sessionName)
	}
	if shouldSkipFallback(err) {
		return "", false, err
	}

	value, found, fallbackErr := s.fallback.Get(ctx, sessionName)
	if fallbackErr == nil {
		return value, found, nil
	}

	return "", false, fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// promote reads sessionName from the fallback and writes a hit back into
// primary. Only cancellation aborts the copy.
func (s *Store) promote(ctx context.Context, sessionName string) (string, bool, error) {
	value, found, err := s.fallback.Get(ctx, sessionName)
	if err != nil {
		if shouldSkipFallback(err) {
			return "", false, err
		}
		return "", false, nil
	}
	if !found {
		return "", false, nil
	}

	if err := s.primary.Put(ctx, sessionName, value); err != nil && shouldSkipFallback(err) {
		return "", false, err
	}

	return value, true, nil
}

func (s *Store) Put(ctx context.Context, sessionName string, signature string) error {
	err := s.primary.Put(ctx, sessionName, signature)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, sessionName, signature)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
