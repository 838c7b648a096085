package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppec-inventory/internal/constants"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "app:\n  mode: debug\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if !cfg.IsDebug() {
		t.Fatalf("expected debug mode")
	}
	if cfg.Storage.DataDir != "./data" || cfg.Storage.RecordFormat != constants.RecordFormatJSON {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Storage.IndexFilename != constants.DefaultIndexFilename {
		t.Fatalf("unexpected index filename: %s", cfg.Storage.IndexFilename)
	}
	if cfg.Locations.Default != constants.LocationUnallocated {
		t.Fatalf("unexpected default location: %s", cfg.Locations.Default)
	}
	if len(cfg.Locations.Warehouses) != 2 {
		t.Fatalf("unexpected warehouses: %v", cfg.Locations.Warehouses)
	}
	if len(cfg.Catalog) != len(DefaultCatalog()) {
		t.Fatalf("expected default catalog, got %+v", cfg.Catalog)
	}
	for i, entry := range DefaultCatalog() {
		if cfg.Catalog[i].Type != entry.Type || len(cfg.Catalog[i].Sizes) != len(entry.Sizes) {
			t.Fatalf("catalog entry %d mismatch: %+v", i, cfg.Catalog[i])
		}
	}
	if cfg.ComponentIndex.Enabled {
		t.Fatalf("component index should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  data_dir: /var/lib/inventory
  record_format: yaml
catalog:
  - type: Hinge Bracket
    sizes: [Small, Large]
locations:
  warehouses: [Hamburg]
component_index:
  enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Storage.DataDir != "/var/lib/inventory" || cfg.Storage.RecordFormat != constants.RecordFormatYAML {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if len(cfg.Catalog) != 1 || cfg.Catalog[0].Type != "Hinge Bracket" || len(cfg.Catalog[0].Sizes) != 2 {
		t.Fatalf("unexpected catalog: %+v", cfg.Catalog)
	}
	if len(cfg.Locations.Warehouses) != 1 || cfg.Locations.Warehouses[0] != "Hamburg" {
		t.Fatalf("unexpected warehouses: %v", cfg.Locations.Warehouses)
	}
	if !cfg.ComponentIndex.Enabled || cfg.ComponentIndex.DSN != "" {
		t.Fatalf("unexpected component index config: %+v", cfg.ComponentIndex)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INVENTORY_STORAGE_DATA_DIR", "/tmp/inventory-env")
	path := writeConfigFile(t, "app:\n  mode: release\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Storage.DataDir != "/tmp/inventory-env" {
		t.Fatalf("expected env override, got %s", cfg.Storage.DataDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"mode":   "app:\n  mode: staging\n",
		"format": "storage:\n  record_format: xml\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, content)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
