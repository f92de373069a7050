package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	storeDirMode    = 0o700
	storeFileMode   = 0o600
	tempFilePattern = ".user-agents-*.json.tmp"
)

type entry struct {
	SessionName string `json:"session_name"`
	UserAgent   string `json:"user_agent"`
}

// Store persists signatures as a JSON list of {session_name, user_agent}.
// Stores opened on the same path share one lock.
type Store struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SignatureStore = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("signature store path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve signature store path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath)}, nil
}

func (s *Store) Get(ctx context.Context, sessionName string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := validateName(sessionName); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}

	for _, e := range entries {
		if e.SessionName == sessionName {
			return e.UserAgent, true, nil
		}
	}

	return "", false, nil
}

func (s *Store) Put(ctx context.Context, sessionName string, signature string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(sessionName); err != nil {
		return err
	}
	if strings.TrimSpace(signature) == "" {
		return errors.New("signature is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	updated := false
	for i := range entries {
		if entries[i].SessionName == sessionName {
			entries[i].UserAgent = signature
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, entry{SessionName: sessionName, UserAgent: signature})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.write(entries)
}

// read treats a missing or unreadable JSON document as an empty list so a
// corrupted file is replaced on the next Put.
func (s *Store) read() ([]entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read signature file: %w", err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil
	}

	return entries, nil
}

func (s *Store) write(entries []entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return fmt.Errorf("create signature directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode signature file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp signature file: %w", err)
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
		return fmt.Errorf("write temp signature file: %w", err)
	}
	if err := tempFile.Chmod(storeFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp signature file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp signature file: %w", err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace signature file: %w", err)
	}

	cleanup = false
	return nil
}

func validateName(sessionName string) error {
	if strings.TrimSpace(sessionName) == "" {
		return errors.New("session name is empty")
	}
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
