package main

import (
	"context"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/katalog/internal/catalog"
	"github.com/hyperjump/katalog/internal/config"
	"github.com/hyperjump/katalog/internal/search"
	"github.com/hyperjump/katalog/internal/server"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"top rated shoes", "-output", "json"},
			expected: []string{"-output", "json", "top rated shoes"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "top rated shoes"},
			expected: []string{"-output", "json", "top rated shoes"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"top rated shoes"},
			expected: []string{"top rated shoes"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"coffee", "beans", "-max-price", "40"},
			expected: []string{"-max-price", "40", "coffee", "beans"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"guitar"}, "guitar"},
		{"multiple words", []string{"office", "chairs"}, "office chairs"},
		{"single quoted phrase", []string{"office chairs"}, "office chairs"},
		{"price phrase", []string{"under", "$150"}, "under $150"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestBuildSearchRequest(t *testing.T) {
	req := buildSearchRequest("shoes", "", facetFlags{})
	if req.Query != "shoes" || req.Mode != "" || req.Facets != nil {
		t.Errorf("no facet flags: got %+v", req)
	}

	req = buildSearchRequest("", "facet", facetFlags{category: "Footwear", maxPrice: "abc", minRating: "4.5"})
	if req.Facets == nil {
		t.Fatal("expected facets")
	}
	f := *req.Facets
	if f.Category != "Footwear" || f.MinRating != 4.5 || f.MinPrice != 0 {
		t.Errorf("facets = %+v", f)
	}
	if !math.IsInf(f.MaxPrice, 1) {
		t.Errorf("invalid max price should be unset, got %v", f.MaxPrice)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
catalog:
  source: file
  path: "./products.json"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Catalog.Path != filepath.Join(dir, "products.json") {
		t.Errorf("catalog path = %s", cfg.Catalog.Path)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config")
	}
}

func TestLoadConfig_defaultsWithoutAnyFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at the default path")
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Catalog.Source != config.SourceEmbedded || cfg.Server.Port != 8080 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestSearchAndParseViaHTTP(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	components, err := initializeComponents(context.Background(), cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	srv := server.NewServer(components.Engine, &cfg.Server, nil, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := searchViaHTTP(ts.URL+"/", buildSearchRequest("Show me electronics under $150", "", facetFlags{}))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range resp.Products {
		got = append(got, p.ID)
	}
	if !reflect.DeepEqual(got, []string{"3", "5", "9"}) {
		t.Errorf("products = %v", got)
	}

	resp, err = searchViaHTTP(ts.URL, buildSearchRequest("", string(search.ModeFacet), facetFlags{category: "Footwear"}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Products[0].ID != "8" {
		t.Errorf("facet search = %+v", resp)
	}

	if _, err := searchViaHTTP(ts.URL, buildSearchRequest("x", "fuzzy", facetFlags{})); err == nil {
		t.Error("expected error for invalid mode")
	}

	parsed, err := parseViaHTTP(ts.URL, "coffee under $40")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Parsed.Category != "food & beverage" || parsed.Parsed.MaxPrice == nil || *parsed.Parsed.MaxPrice != 40 {
		t.Errorf("parsed = %+v", parsed.Parsed)
	}
}

func TestImportProducts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "products.yaml")
	content := `
- id: a
  name: Desk Lamp
  price: 24.99
  category: Home & Office
  rating: 4.1
- name: Stool
  price: 15
`
	if err := os.WriteFile(file, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "catalog.db")

	n, err := importProducts(context.Background(), file, dbPath, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	cfg := &config.Config{Catalog: config.CatalogConfig{Source: config.SourceSQLite, Path: dbPath}}
	config.ApplyDefaults(cfg)
	components, err := initializeComponents(context.Background(), cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	if components.Catalog.Len() != 2 {
		t.Errorf("catalog has %d products, want 2", components.Catalog.Len())
	}
	if _, err := components.Catalog.Get(catalog.ProductID("Stool")); err != nil {
		t.Errorf("generated id not found: %v", err)
	}

	if _, err := importProducts(context.Background(), filepath.Join(dir, "products.csv"), dbPath, false); err == nil {
		t.Error("expected error for unsupported file")
	}
}

func TestInitializeComponents_badSource(t *testing.T) {
	cfg := &config.Config{Catalog: config.CatalogConfig{Source: config.SourceFile, Path: filepath.Join(t.TempDir(), "missing.yaml")}}
	config.ApplyDefaults(cfg)
	if _, err := initializeComponents(context.Background(), cfg, zap.NewNop(), nil); err == nil {
		t.Error("expected error for a missing catalog file")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}
