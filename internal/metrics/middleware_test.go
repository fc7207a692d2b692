package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get(searchRoute, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 300)))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Delete("/indexes/{index}/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func TestMiddleware_CountsPerModel(t *testing.T) {
	r := newRouter()

	beforeRoute := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", searchRoute, "200"))
	beforeShoes := testutil.ToFloat64(modelSearchesTotal.WithLabelValues("shoes", "200"))

	for _, model := range []string{"shoes", "shoes", "books"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/models/"+model+"/search?q=x", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", searchRoute, "200")); got-beforeRoute != 3 {
		t.Errorf("route counter delta = %v, want 3", got-beforeRoute)
	}
	if got := testutil.ToFloat64(modelSearchesTotal.WithLabelValues("shoes", "200")); got-beforeShoes != 2 {
		t.Errorf("shoes searches delta = %v, want 2", got-beforeShoes)
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, path, route, status string
	}{
		{"GET", "/health", "/health", "503"},
		{"DELETE", "/indexes/main/documents/5", "/indexes/{index}/documents/{id}", "204"},
		{"GET", "/nowhere", "unknown", "404"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))

			got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			if got-before != 1 {
				t.Errorf("requests_total{%s %s %s} delta = %v, want 1", tc.method, tc.route, tc.status, got-before)
			}
		})
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	var during float64
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsInFlight)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/slow", http.NoBody))

	if during != before+1 {
		t.Errorf("in-flight during request = %f, want %f", during, before+1)
	}
	if after := testutil.ToFloat64(httpRequestsInFlight); after != before {
		t.Errorf("in-flight after request = %f, want %f", after, before)
	}
}

func TestRouteLabel(t *testing.T) {
	if got := routeLabel(nil); got != "unknown" {
		t.Errorf("routeLabel(nil) = %q", got)
	}
	rctx := chi.NewRouteContext()
	if got := routeLabel(rctx); got != "unknown" {
		t.Errorf("routeLabel(empty) = %q", got)
	}
	rctx.RoutePatterns = []string{"/health"}
	if got := routeLabel(rctx); got != "/health" {
		t.Errorf("routeLabel = %q, want /health", got)
	}
}
