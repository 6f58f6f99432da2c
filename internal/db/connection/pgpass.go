package connection

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazydash/internal/models"
)

// PgPassEntry is one hostname:port:database:username:password line of a
// pgpass file. Any field but the password may be the wildcard "*".
type PgPassEntry struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DefaultPgPassPath returns $PGPASSFILE, or ~/.pgpass
func DefaultPgPassPath() (string, error) {
	if p := os.Getenv("PGPASSFILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pgpass"), nil
}

// LoadPgPass reads a pgpass file. A missing file yields no entries; on
// non-Windows systems a file readable by group or others is rejected.
func LoadPgPass(path string) ([]PgPassEntry, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0077 != 0 {
		return nil, fmt.Errorf("%s has insecure permissions %v, must be 0600", path, info.Mode().Perm())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []PgPassEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if entry, ok := parsePgPassLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

// parsePgPassLine splits on unescaped colons; \: and \\ are literal
func parsePgPassLine(line string) (PgPassEntry, bool) {
	fields := make([]string, 0, 5)
	var current strings.Builder
	escaped := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == ':':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())

	if len(fields) != 5 {
		return PgPassEntry{}, false
	}
	if fields[1] != "*" {
		if p, err := strconv.Atoi(fields[1]); err != nil || p < 1 || p > 65535 {
			return PgPassEntry{}, false
		}
	}

	return PgPassEntry{
		Host:     fields[0],
		Port:     fields[1],
		Database: fields[2],
		User:     fields[3],
		Password: fields[4],
	}, true
}

// LookupPgPass returns the password of the first entry matching config
func LookupPgPass(entries []PgPassEntry, config models.ConnectionConfig) (string, bool) {
	port := strconv.Itoa(config.Port)
	for _, e := range entries {
		if wildcard(e.Host, config.Host) &&
			wildcard(e.Port, port) &&
			wildcard(e.Database, config.Database) &&
			wildcard(e.User, config.User) {
			return e.Password, true
		}
	}
	return "", false
}

func wildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
