package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	snapshotsFileMode = 0o600
	snapshotsDirMode  = 0o700
	tempFilePattern   = ".sessions-*.toml.tmp"
)

// Repository stores the latest snapshot of every session in one TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SnapshotRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("snapshots path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshots path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Save(ctx context.Context, snapshot domain.SessionSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(snapshot.SessionName) == "" {
		return errors.New("snapshot session name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(snapshot)
	updated := false
	for i := range file.Sessions {
		if file.Sessions[i].SessionName == encoded.SessionName {
			file.Sessions[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Sessions = append(file.Sessions, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Get(ctx context.Context, sessionName string) (domain.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionSnapshot{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	for _, entry := range file.Sessions {
		if entry.SessionName == sessionName {
			return fromSchema(entry), nil
		}
	}

	return domain.SessionSnapshot{}, domain.ErrSnapshotNotFound
}

// List returns every snapshot ordered by session name.
func (r *Repository) List(ctx context.Context) ([]domain.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.SessionSnapshot, 0, len(file.Sessions))
	for _, entry := range file.Sessions {
		snapshots = append(snapshots, fromSchema(entry))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SessionName < snapshots[j].SessionName
	})

	return snapshots, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read snapshots file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode snapshots file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), snapshotsDirMode); err != nil {
		return fmt.Errorf("create snapshots directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode snapshots file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp snapshots file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp snapshots file: %w", err)
	}
	if err := tempFile.Chmod(snapshotsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp snapshots file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp snapshots file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace snapshots file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(snapshot domain.SessionSnapshot) snapshotSchema {
	return snapshotSchema{
		SessionName: snapshot.SessionName,
		Proxy:       snapshot.Proxy,
		Balance:     snapshot.Balance,
		Energy:      energySchema{Current: snapshot.Energy, Max: snapshot.MaxEnergy},
		Boss: bossSchema{
			Level:     snapshot.BossLevel,
			Health:    snapshot.BossHealth,
			MaxHealth: snapshot.BossMaxHealth,
		},
		TurboActive: snapshot.TurboActive,
		Passes:      snapshot.Passes,
		LastPassAt:  formatTime(snapshot.LastPassAt),
		LastError:   snapshot.LastError,
	}
}

func fromSchema(entry snapshotSchema) domain.SessionSnapshot {
	return domain.SessionSnapshot{
		SessionName:   entry.SessionName,
		Proxy:         entry.Proxy,
		Balance:       entry.Balance,
		Energy:        entry.Energy.Current,
		MaxEnergy:     entry.Energy.Max,
		BossLevel:     entry.Boss.Level,
		BossHealth:    entry.Boss.Health,
		BossMaxHealth: entry.Boss.MaxHealth,
		TurboActive:   entry.TurboActive,
		Passes:        entry.Passes,
		LastPassAt:    parseTime(entry.LastPassAt),
		LastError:     entry.LastError,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
