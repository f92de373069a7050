package textfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	listFileMode    = 0o600
	listDirMode     = 0o700
	tempFilePattern = ".list-*.tmp"
	utf8BOM         = "\ufeff"
)

var ErrIndexOutOfRange = errors.New("list index out of range")

// Store is a newline-delimited list file. Blank lines are ignored on read.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.ListSource = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns every non-blank line, trimmed. A missing file is an empty list.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read()
}

func (s *Store) Append(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry = strings.TrimSpace(entry)
	if entry == "" {
		return errors.New("list entry is empty")
	}
	if strings.ContainsAny(entry, "\r\n") {
		return errors.New("list entry must be a single line")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	return s.write(append(entries, entry))
}

// RemoveAt deletes the entry at index (0-based, as returned by Load) and
// returns it.
func (s *Store) RemoveAt(ctx context.Context, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(entries) {
		return "", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(entries))
	}

	removed := entries[index]
	remaining := append(entries[:index:index], entries[index+1:]...)
	if err := s.write(remaining); err != nil {
		return "", err
	}

	return removed, nil
}

func (s *Store) read() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read list file: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan list file: %w", err)
	}

	return entries, nil
}

func (s *Store) write(entries []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), listDirMode); err != nil {
		return fmt.Errorf("create list directory: %w", err)
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		buf.WriteString(entry)
		buf.WriteByte('\n')
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp list file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(buf.Bytes()); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp list file: %w", err)
	}
	if err := tempFile.Chmod(listFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp list file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp list file: %w", err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace list file: %w", err)
	}

	cleanup = false
	return nil
}
