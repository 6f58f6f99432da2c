package connection

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestConnString(t *testing.T) {
	cfg := models.ConnectionConfig{Host: "localhost", Port: 5432, Database: "sales", User: "analyst"}
	assert.Equal(t, "host=localhost port=5432 user=analyst database=sales sslmode=prefer", ConnString(cfg))

	cfg.SSLMode = "disable"
	cfg.Password = "it's secret"
	assert.Equal(t, `host=localhost port=5432 user=analyst database=sales sslmode=disable password='it\'s secret'`, ConnString(cfg))
}

func TestQuoteParam(t *testing.T) {
	assert.Equal(t, "plain", quoteParam("plain"))
	assert.Equal(t, "''", quoteParam(""))
	assert.Equal(t, `'a b'`, quoteParam("a b"))
	assert.Equal(t, `'a\\b'`, quoteParam(`a\b`))
}

func TestPasswordStore(t *testing.T) {
	keyring.MockInit()
	ps := NewPasswordStore()

	_, err := ps.Get("h", 5432, "db", "u")
	assert.ErrorIs(t, err, ErrPasswordNotFound)

	require.NoError(t, ps.Save("h", 5432, "db", "u", "pw"))
	got, err := ps.Get("h", 5432, "db", "u")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	require.NoError(t, ps.Delete("h", 5432, "db", "u"))
	require.NoError(t, ps.Delete("h", 5432, "db", "u"))
	_, err = ps.Get("h", 5432, "db", "u")
	assert.ErrorIs(t, err, ErrPasswordNotFound)
}

func TestPasswordStore_SaveEmptyIsNoop(t *testing.T) {
	keyring.MockInit()
	ps := NewPasswordStore()

	require.NoError(t, ps.Save("h", 1, "db", "u", ""))
	_, err := ps.Get("h", 1, "db", "u")
	assert.ErrorIs(t, err, ErrPasswordNotFound)
}

func TestPasswordStore_Resolve(t *testing.T) {
	keyring.MockInit()
	ps := NewPasswordStore()
	ps.PgPassFile = ""
	cfg := models.ConnectionConfig{Host: "h", Port: 5432, Database: "db", User: "u"}

	resolved, err := ps.Resolve(cfg)
	require.NoError(t, err)
	assert.Empty(t, resolved.Password)

	require.NoError(t, ps.Save("h", 5432, "db", "u", "stored"))
	resolved, err = ps.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "stored", resolved.Password)

	cfg.Password = "explicit"
	resolved, err = ps.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "explicit", resolved.Password)
}

func writePgPass(t *testing.T, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgpass")
	require.NoError(t, os.WriteFile(path, []byte(body), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestLoadPgPass(t *testing.T) {
	path := writePgPass(t, `# comment
db.internal:5432:sales:analyst:pa\:ss
*:*:*:admin:root
broken:line
bad:port:x:y:z
`, 0o600)

	entries, err := LoadPgPass(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, PgPassEntry{Host: "db.internal", Port: "5432", Database: "sales", User: "analyst", Password: "pa:ss"}, entries[0])

	pw, ok := LookupPgPass(entries, models.ConnectionConfig{Host: "db.internal", Port: 5432, Database: "sales", User: "analyst"})
	assert.True(t, ok)
	assert.Equal(t, "pa:ss", pw)

	pw, ok = LookupPgPass(entries, models.ConnectionConfig{Host: "elsewhere", Port: 6543, Database: "x", User: "admin"})
	assert.True(t, ok)
	assert.Equal(t, "root", pw)

	_, ok = LookupPgPass(entries, models.ConnectionConfig{Host: "elsewhere", Port: 5432, Database: "sales", User: "analyst"})
	assert.False(t, ok)
}

func TestLoadPgPass_Missing(t *testing.T) {
	entries, err := LoadPgPass(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadPgPass_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions are not checked on windows")
	}
	path := writePgPass(t, "*:*:*:*:pw\n", 0o644)
	_, err := LoadPgPass(path)
	assert.ErrorContains(t, err, "insecure permissions")
}

func TestPasswordStore_ResolveFallsBackToPgPass(t *testing.T) {
	keyring.MockInit()
	ps := NewPasswordStore()
	ps.PgPassFile = writePgPass(t, "h:5432:db:u:from-pgpass\n", 0o600)
	cfg := models.ConnectionConfig{Host: "h", Port: 5432, Database: "db", User: "u"}

	resolved, err := ps.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-pgpass", resolved.Password)

	require.NoError(t, ps.Save("h", 5432, "db", "u", "from-keyring"))
	resolved, err = ps.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", resolved.Password)
}
