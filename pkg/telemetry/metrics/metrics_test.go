package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"libregistry/janitor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:            true,
		Namespace:          "test",
		Subsystem:          "janitor",
		RunDurationBuckets: []float64{0.1, 1, 10},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "libregistry" || cfg.Subsystem != "janitor" {
		t.Errorf("namespace/subsystem = %s/%s, want libregistry/janitor", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.RunDurationBuckets) == 0 {
		t.Error("expected default duration buckets")
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	mm := collector.maintenance

	collector.RecordRun("prune_versions", StatusSuccess, 2*time.Second)
	collector.RecordRun("prune_versions", StatusSuccess, 3*time.Second)
	collector.RecordRun("prune_versions", StatusError, time.Second)
	collector.RecordRun("optimize_sync", StatusSkipped, 0)

	if got := testutil.ToFloat64(mm.runsTotal.WithLabelValues("prune_versions", StatusSuccess)); got != 2 {
		t.Errorf("successful prune runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mm.runsTotal.WithLabelValues("prune_versions", StatusError)); got != 1 {
		t.Errorf("failed prune runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mm.runsTotal.WithLabelValues("optimize_sync", StatusSkipped)); got != 1 {
		t.Errorf("skipped optimize runs = %v, want 1", got)
	}

	// Skipped runs do not produce a duration sample.
	if got := testutil.CollectAndCount(mm.runDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(mm.lastSuccess.WithLabelValues("prune_versions")); got <= 0 {
		t.Errorf("last success timestamp = %v, want > 0", got)
	}
}

func TestCollector_Observer(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	mm := collector.maintenance

	collector.ArtifactMissing("archive")
	collector.ArtifactMissing("archive")
	collector.ArtifactMissing("examples")
	collector.LibraryDeleted()
	collector.VersionsDeleted(4)
	collector.VersionsDeleted(0)
	collector.LibrariesScheduled(120)
	collector.LibrariesScheduled(118)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"missing archives", testutil.ToFloat64(mm.missingArtifactsTotal.WithLabelValues("archive")), 2},
		{"missing examples", testutil.ToFloat64(mm.missingArtifactsTotal.WithLabelValues("examples")), 1},
		{"libraries deleted", testutil.ToFloat64(mm.librariesDeletedTotal), 1},
		{"versions deleted", testutil.ToFloat64(mm.versionsDeletedTotal), 4},
		{"libraries scheduled", testutil.ToFloat64(mm.librariesScheduled), 118},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRun("prune_versions", StatusSuccess, time.Second)
	collector.LibraryDeleted()

	if got := testutil.ToFloat64(collector.maintenance.librariesDeletedTotal); got != 0 {
		t.Errorf("libraries deleted = %v, want 0 when disabled", got)
	}
	if got := testutil.CollectAndCount(collector.maintenance.runsTotal); got != 0 {
		t.Errorf("runs series = %d, want 0 when disabled", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.VersionsDeleted(3)

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "test_janitor_versions_deleted_total 3") {
		t.Errorf("metrics output missing versions_deleted_total:\n%s", body)
	}
}
