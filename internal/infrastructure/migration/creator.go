package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// versionWidth matches the zero padding of the checked-in migrations
const versionWidth = 6

var migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// MigrationFile is an up/down pair on disk
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair numbered after the highest
// existing version in dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, next, slug)
	mf := &MigrationFile{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	header := "-- " + slug
	if description != "" {
		header += ": " + description
	}
	if err := os.WriteFile(mf.UpPath, []byte(header+"\n\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(header+" (rollback)\n\n"), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

// ListMigrations returns the migration pairs in dir ordered by version.
// A missing directory has no migrations.
func ListMigrations(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*MigrationFile)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFile.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		mf, ok := byVersion[uint(v)]
		if !ok {
			mf = &MigrationFile{Version: uint(v), Name: match[2]}
			byVersion[uint(v)] = mf
		}
		path := filepath.Join(dir, entry.Name())
		if match[3] == "up" {
			mf.UpPath = path
		} else {
			mf.DownPath = path
		}
	}

	out := make([]MigrationFile, 0, len(byVersion))
	for _, mf := range byVersion {
		out = append(out, *mf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// sanitizeName lower-cases name and joins its words with underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}
