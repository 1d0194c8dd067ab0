// Package testutil opens a throwaway arcade store for database tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"arcade-tournament/internal/config"
	"arcade-tournament/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore migrates a fresh schema and returns a store bound to it. The
// test is skipped when TEST_POSTGRES_DSN is unset. The returned func drops
// the schema unless TEST_KEEP_SCHEMA is set.
func OpenTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx := context.Background()
	schema := fmt.Sprintf("%s_%d", cfg.SchemaPrefix, time.Now().UnixNano())
	if err := execSchemaDDL(ctx, cfg.PostgresDSN, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}

	st, err := store.New(withSearchPath(cfg.PostgresDSN, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	files, err := upMigrations()
	if err != nil {
		st.Close()
		t.Fatalf("find migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			st.Close()
			t.Fatalf("read %s: %v", filepath.Base(f), err)
		}
		if _, err := st.Pool.Exec(ctx, string(b)); err != nil {
			st.Close()
			t.Fatalf("apply %s: %v", filepath.Base(f), err)
		}
	}

	return st, func() {
		st.Close()
		if cfg.KeepSchema {
			t.Logf("kept schema %s", schema)
			return
		}
		_ = execSchemaDDL(ctx, cfg.PostgresDSN, "DROP SCHEMA %s CASCADE", schema)
	}
}

func execSchemaDDL(ctx context.Context, dsn, format, schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return fmt.Errorf("schema %q does not match %s", schema, schemaNamePattern)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()))
	return err
}

// upMigrations lists migrations/*.up.sql in apply order, searching upward
// from the test's working directory.
func upMigrations() ([]string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	start := dir
	for {
		files, err := filepath.Glob(filepath.Join(dir, "migrations", "*.up.sql"))
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			sort.Strings(files)
			return files, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no migrations/*.up.sql above %s", start)
		}
		dir = parent
	}
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
