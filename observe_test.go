package sphinxsuggest

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe("query", "catalog", time.Now(), nil)
	o.suggestion(true)
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	o.observe("query", "catalog", time.Now(), nil)
	o.observe("query", "catalog", time.Now(), errors.New("boom"))
	o.observe("upsert", "products_rt", time.Now(), nil)
	o.suggestion(true)
	o.suggestion(false)
	o.suggestion(false)

	if got := testutil.ToFloat64(o.metrics.operations.WithLabelValues("query", "ok")); got != 1 {
		t.Errorf("query ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.metrics.operations.WithLabelValues("query", "error")); got != 1 {
		t.Errorf("query error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.metrics.suggestions.WithLabelValues("false")); got != 2 {
		t.Errorf("suggestions offered=false = %v, want 2", got)
	}

	n, err := testutil.GatherAndCount(reg, "sphinxsuggest_sdk_operations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 3 {
		t.Errorf("operation series = %d, want 3", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	second.observe("ping", "", time.Now(), nil)
	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestObserver_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	o, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	o.observe("keywords", "products", time.Now(), nil)
	o.observe("snippets", "products", time.Now(), errors.New("index missing"))

	out := buf.String()
	if !strings.Contains(out, "operation completed") || !strings.Contains(out, "op=keywords") {
		t.Errorf("missing debug line: %s", out)
	}
	if !strings.Contains(out, "operation failed") || !strings.Contains(out, "index missing") {
		t.Errorf("missing warn line: %s", out)
	}
	if !strings.Contains(out, "target=products") {
		t.Errorf("missing target attr: %s", out)
	}
}
