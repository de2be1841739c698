package account

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, path string) *FileStore {
	t.Helper()
	store, err := NewFileStore(path, log.New(io.Discard))
	require.NoError(t, err)
	return store
}

func TestFileStoreCreateAndFind(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "accounts.json"))

	acct, err := store.Create("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "alice", acct.Nickname)
	assert.Equal(t, StartingChips, acct.Chips)

	found, err := store.Find(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct, found)

	// Find returns a copy, not a live reference
	found.Chips = 0
	again, err := store.Find(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, StartingChips, again.Chips)

	_, err = store.Find("nope")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	store := newTestStore(t, path)
	acct, err := store.Create("alice")
	require.NoError(t, err)
	_, err = store.Create("bob")
	require.NoError(t, err)
	require.NoError(t, store.SetNickname(acct.ID, "alicia"))

	reopened := newTestStore(t, path)
	all, err := reopened.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := reopened.Find(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", found.Nickname)
}

func TestFileStoreAdjustChips(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "accounts.json"))

	acct, err := store.Create("alice")
	require.NoError(t, err)

	balance, err := store.AdjustChips(acct.ID, -1000)
	require.NoError(t, err)
	assert.Equal(t, StartingChips-1000, balance)

	balance, err = store.AdjustChips(acct.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, StartingChips-500, balance)

	// the bankroll can never go negative
	balance, err = store.AdjustChips(acct.ID, -(StartingChips + 1))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, StartingChips-500, balance)

	_, err = store.AdjustChips("nope", 10)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestFileStoreSetNicknameUnknownAccount(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "accounts.json"))
	assert.ErrorIs(t, store.SetNickname("nope", "x"), ErrUnknownAccount)
}
