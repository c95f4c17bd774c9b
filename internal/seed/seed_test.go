package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaldesk/internal/core"
)

func TestDefaultRecordsAreValid(t *testing.T) {
	f := Default()
	require.Len(t, f.Users, 2)
	require.Len(t, f.Accounts, 2)
	require.Len(t, f.Sources, 3)
	require.Len(t, f.Transactions, 3)

	for _, p := range f.Users {
		assert.NoError(t, p.Validate(), "user %s", p.ID)
	}
	for _, a := range f.Accounts {
		assert.NoError(t, a.Validate(), "account %s", a.ID)
	}
	for _, s := range f.Sources {
		assert.NoError(t, s.Validate(), "source %s", s.ID)
	}
	for _, tx := range f.Transactions {
		assert.NoError(t, tx.Validate(), "transaction %s", tx.ID)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `
users:
  - id: "7"
    first_name: Ada
    last_name: Lovelace
    email: ada@example.com
    role: SUPERADMIN
    type: Individual
    active: true
    created_at: 2024-02-01T00:00:00Z
transactions:
  - id: "9"
    amount: "99.95"
    direction: SELL
    symbol: XAUUSD
    currency: USD
    created_at: 2024-02-02T08:00:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Users, 1)
	assert.Equal(t, core.RoleSuperAdmin, f.Users[0].Role)
	assert.True(t, f.Users[0].CreatedAt.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, f.Transactions, 1)
	assert.True(t, f.Transactions[0].Amount.Equal(decimal.RequireFromString("99.95")))
	assert.Empty(t, f.Accounts)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	f, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Len(t, f.Users, 2)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [::"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
