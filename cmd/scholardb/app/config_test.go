package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/ugoscholars/scholardb/internal/config"
)

func newTestConfig() *Config {
	v := viper.New()
	config.SetDefaults(v)
	return &Config{v: v}
}

func TestSettingsStorePath(t *testing.T) {
	c := newTestConfig()
	c.UpdateFromFlags(false, false, false, "", "", "records/scholars.xlsx", "")

	settings, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings.Store.Path != "records/scholars.xlsx" || settings.Store.DSN != "" {
		t.Errorf("Unexpected store %+v", settings.Store)
	}
}

func TestSettingsStoreDSN(t *testing.T) {
	c := newTestConfig()
	c.UpdateFromFlags(false, false, false, "", "", "postgres://ugo@localhost/scholars", "")

	settings, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings.Store.DSN != "postgres://ugo@localhost/scholars" || settings.Store.Path != "" {
		t.Errorf("Unexpected store %+v", settings.Store)
	}
}

func TestSettingsWithoutStore(t *testing.T) {
	if _, err := newTestConfig().Settings(); err == nil {
		t.Fatal("Expected error when no store is configured")
	}
}

func TestUpdateFromFlagsKeepsConfigValues(t *testing.T) {
	c := newTestConfig()
	c.Format = "yaml"
	c.Quiet = true

	c.UpdateFromFlags(true, false, false, "", "", "", "csv")

	if c.Format != "yaml" || !c.Quiet || !c.Verbose || c.StoreDriver != "csv" {
		t.Errorf("Unexpected config %+v", c)
	}
}

func TestUseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scholardb.yaml")
	content := "store:\n  path: /data/scholars.xlsx\nsheets:\n  order:\n    - C1\n    - C2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c := newTestConfig()
	if err := c.UseConfigFile(path); err != nil {
		t.Fatalf("UseConfigFile failed: %v", err)
	}
	settings, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings.Store.Path != "/data/scholars.xlsx" {
		t.Errorf("Expected path from file, got %q", settings.Store.Path)
	}
	if len(settings.Sheets) != 2 || settings.Sheets[1] != "C2" {
		t.Errorf("Expected sheets from file, got %v", settings.Sheets)
	}

	if err := c.UseConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
