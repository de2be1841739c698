package account

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/cardroom/cardroom/internal/fileutil"
	"github.com/cardroom/cardroom/internal/gameid"
)

// FileStore is a Store backed by a single JSON file. Every mutation is
// written atomically, so a crash leaves either the previous snapshot or
// the new one, never a torn file.
type FileStore struct {
	mu       sync.Mutex
	path     string
	accounts map[string]*Account
	logger   *log.Logger
}

// NewFileStore opens the store at path, loading any existing snapshot
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		accounts: make(map[string]*Account),
		logger:   logger.WithPrefix("accounts"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read account store: %w", err)
	}

	var accounts []*Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode account store: %w", err)
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}

	s.logger.Info("loaded account store", "path", path, "accounts", len(accounts))
	return s, nil
}

// Create registers a new account with the starting bankroll
func (s *FileStore) Create(nickname string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Account{
		ID:       gameid.Generate(),
		Nickname: nickname,
		Chips:    StartingChips,
	}
	s.accounts[a.ID] = a

	if err := s.persist(); err != nil {
		delete(s.accounts, a.ID)
		return nil, err
	}

	s.logger.Info("created account", "nickname", nickname)
	return a, nil
}

// Find returns the account with the given id
func (s *FileStore) Find(id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrUnknownAccount)
	}
	dup := *a
	return &dup, nil
}

// All returns every account in the store
func (s *FileStore) All() ([]*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		dup := *a
		accounts = append(accounts, &dup)
	}
	return accounts, nil
}

// SetNickname changes an account's display name
func (s *FileStore) SetNickname(id, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, ErrUnknownAccount)
	}

	previous := a.Nickname
	a.Nickname = nickname
	if err := s.persist(); err != nil {
		a.Nickname = previous
		return err
	}
	return nil
}

// AdjustChips applies a delta to the bankroll and returns the new balance
func (s *FileStore) AdjustChips(id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", id, ErrUnknownAccount)
	}
	if a.Chips+delta < 0 {
		return a.Chips, fmt.Errorf("balance %d, delta %d: %w", a.Chips, delta, ErrInsufficientFunds)
	}

	a.Chips += delta
	if err := s.persist(); err != nil {
		a.Chips -= delta
		return a.Chips, err
	}
	return a.Chips, nil
}

// persist writes the snapshot. Callers hold the lock.
func (s *FileStore) persist() error {
	accounts := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account store: %w", err)
	}

	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write account store: %w", err)
	}
	return nil
}
