package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bnema/memefi-tapper/internal/config"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	DefaultKey  = "mtap:signatures"
	pingTimeout = 5 * time.Second
)

type hashClient interface {
	HGet(ctx context.Context, key, field string) *goredis.StringCmd
	HSet(ctx context.Context, key string, values ...any) *goredis.IntCmd
}

// Store keeps signatures in a single Redis hash keyed by session name.
type Store struct {
	client hashClient
	key    string
}

var _ ports.SignatureStore = (*Store)(nil)

func NewStore(client hashClient, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// NewClient builds a client without contacting the server. Connection
// problems surface on the first command.
func NewClient(settings config.RedisSettings) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     settings.Addr,
		Password: settings.Password,
		DB:       settings.DB,
	})
}

// Ping checks that the server answers within pingTimeout.
func Ping(ctx context.Context, client *goredis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect to redis %s: %w", client.Options().Addr, err)
	}

	return nil
}

// Dial opens a client and verifies the server answers a ping.
func Dial(ctx context.Context, settings config.RedisSettings) (*goredis.Client, error) {
	client := NewClient(settings)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func (s *Store) Get(ctx context.Context, sessionName string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	value, err := s.client.HGet(ctx, s.key, sessionName).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get signature: %w", err)
	}

	return value, true, nil
}

func (s *Store) Put(ctx context.Context, sessionName string, signature string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(sessionName) == "" {
		return errors.New("session name is empty")
	}

	if err := s.client.HSet(ctx, s.key, sessionName, signature).Err(); err != nil {
		return fmt.Errorf("redis put signature: %w", err)
	}

	return nil
}
