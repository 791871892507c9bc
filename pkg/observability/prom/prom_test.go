package prom

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ganttrow/pkg/observability"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := New(nil)

	m.OnLayoutComplete(ctx, "week", 2, 5, 10*time.Millisecond, nil)
	m.OnLayoutComplete(ctx, "day", 1, 0, time.Millisecond, errors.New("bad"))
	m.OnRowComplete(ctx, true, 3, time.Millisecond, nil)
	m.OnRowComplete(ctx, false, 2, time.Millisecond, nil)
	m.OnRenderComplete(ctx, []string{"svg", "json"}, time.Millisecond, nil)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "row")
	m.OnCacheSet(ctx, "row", 128)
	m.OnRequest(ctx, "POST", "/v1/layout", 200, time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		`ganttrow_layouts_total{outcome="ok",unit="week"} 1`,
		`ganttrow_layouts_total{outcome="error",unit="day"} 1`,
		`ganttrow_pills_total 5`,
		`ganttrow_rows_total{kind="group",outcome="ok"} 1`,
		`ganttrow_rows_total{kind="leaf",outcome="ok"} 1`,
		`ganttrow_renders_total{format="svg"} 1`,
		`ganttrow_cache_events_total{event="hit",key_type="layout"} 1`,
		`ganttrow_cache_events_total{event="miss",key_type="row"} 1`,
		`ganttrow_cache_written_bytes_total{key_type="row"} 128`,
		`ganttrow_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestRegister(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	m := New(nil)
	m.Register()
	if observability.Pipeline() != m || observability.Cache() != m || observability.Server() != m {
		t.Error("Register should install m for every hook kind")
	}

	observability.Server().OnRequest(context.Background(), "GET", "/healthz", 200, 0)
	if !strings.Contains(scrape(t, m), `route="/healthz"`) {
		t.Error("request through the global hook not recorded")
	}
}
