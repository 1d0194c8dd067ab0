package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithSearchPath(t *testing.T) {
	cases := []struct {
		dsn, want string
	}{
		{"postgres://localhost/arcade", "postgres://localhost/arcade?search_path=arcade_test_1"},
		{"postgres://localhost/arcade?sslmode=disable", "postgres://localhost/arcade?sslmode=disable&search_path=arcade_test_1"},
	}
	for _, tc := range cases {
		if got := withSearchPath(tc.dsn, "arcade_test_1"); got != tc.want {
			t.Fatalf("withSearchPath(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}

func TestSchemaDDLRejectsUnsafeName(t *testing.T) {
	err := execSchemaDDL(context.Background(), "postgres://unused", "CREATE SCHEMA %s", "arcade; DROP TABLE scores")
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("err = %v, want name rejection", err)
	}
}

func TestUpMigrationsFindsInit(t *testing.T) {
	files, err := upMigrations()
	if err != nil {
		t.Fatalf("upMigrations() error = %v", err)
	}
	if filepath.Base(files[0]) != "000001_init.up.sql" {
		t.Fatalf("first migration = %s", files[0])
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ".up.sql") {
			t.Fatalf("unexpected file %s", f)
		}
	}
}
