package sphinxsuggest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/db/sphinxql"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
	domsuggest "github.com/kailas-cloud/sphinxsuggest/internal/domain/suggest"
	healthuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/health"
	searchuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/search"
)

// --- mocks ---

type mockSearch struct {
	resp   *searchuc.Response
	err    error
	models []string
	gotArg struct {
		model, text string
		page        int
	}
}

func (m *mockSearch) Query(_ context.Context, model, text string, page int) (*searchuc.Response, error) {
	m.gotArg.model, m.gotArg.text, m.gotArg.page = model, text, page
	return m.resp, m.err
}

func (m *mockSearch) Models() []string { return m.models }

type mockSuggest struct {
	corr *domsuggest.Correction
	err  error
}

func (m *mockSuggest) Suggest(context.Context, string) (*domsuggest.Correction, error) {
	return m.corr, m.err
}

type mockIndexing struct {
	err     error
	doc     db.Document
	deleted []uint64
}

func (m *mockIndexing) Upsert(_ context.Context, _ string, doc db.Document) error {
	m.doc = doc
	return m.err
}

func (m *mockIndexing) Delete(_ context.Context, _ string, ids ...uint64) error {
	m.deleted = ids
	return m.err
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- option and construction tests ---

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.connectTimeout != time.Second {
		t.Errorf("connectTimeout = %v, want 1s", cfg.connectTimeout)
	}
	if cfg.queryTimeout != 3*time.Second {
		t.Errorf("queryTimeout = %v, want 3s", cfg.queryTimeout)
	}
	if !cfg.partialMatch {
		t.Error("partialMatch should default to true")
	}
	if cfg.indexing {
		t.Error("indexing should default to false")
	}
}

func TestOptions_Apply(t *testing.T) {
	cfg := defaultConfig()
	opts := []Option{
		WithSphinx("127.0.0.1:9306"),
		WithCredentials("u", "p"),
		WithTimeouts(2*time.Second, 7*time.Second),
		WithQueryTimeout(500 * time.Millisecond),
		WithModel(Model{Name: "a"}),
		WithModel(Model{Name: "b"}),
		WithPartialMatch(false),
		WithMinResultCount(5),
		WithoutSuggestions(),
		WithIndexing(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.addr != "127.0.0.1:9306" || cfg.user != "u" || cfg.password != "p" {
		t.Errorf("connection options not applied: %+v", cfg)
	}
	if cfg.connectTimeout != 2*time.Second || cfg.readTimeout != 7*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.connectTimeout, cfg.readTimeout)
	}
	if cfg.queryTimeout != 500*time.Millisecond {
		t.Errorf("queryTimeout = %v", cfg.queryTimeout)
	}
	if len(cfg.models) != 2 {
		t.Errorf("models = %d, want 2", len(cfg.models))
	}
	if cfg.partialMatch || cfg.minResultCount != 5 {
		t.Errorf("search options not applied: %+v", cfg)
	}
	if !cfg.suggestDisabled || !cfg.indexing {
		t.Errorf("feature toggles not applied: %+v", cfg)
	}

	WithSuggestions(SuggestOptions{TopCount: 3}).apply(cfg)
	if cfg.suggestDisabled || cfg.suggest.TopCount != 3 {
		t.Errorf("WithSuggestions should re-enable: %+v", cfg.suggest)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error without WithSphinx")
	}
}

func TestNew_InvalidModel(t *testing.T) {
	_, err := New(context.Background(),
		WithSphinx("127.0.0.1:9306"),
		WithModel(Model{Name: "m", SortMode: "sideways"}),
	)
	if err == nil {
		t.Fatal("expected error for bad sort mode")
	}
}

func TestValidateModels(t *testing.T) {
	tests := []struct {
		name    string
		models  []Model
		wantErr bool
	}{
		{"none", nil, false},
		{"relevance", []Model{{Name: "a"}}, false},
		{"attr sort", []Model{{Name: "a", SortMode: SortAttrDesc, SortAttribute: "price"}}, false},
		{"extended", []Model{{Name: "a", SortMode: SortExtended, SortAttribute: "price ASC, @id DESC"}}, false},
		{"missing name", []Model{{}}, true},
		{"duplicate", []Model{{Name: "a"}, {Name: "a"}}, true},
		{"attr sort without attribute", []Model{{Name: "a", SortMode: SortAttrAsc}}, true},
		{"unknown mode", []Model{{Name: "a", SortMode: "random"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateModels(tt.models)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateModels() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- client methods over mocks ---

func TestClient_Query(t *testing.T) {
	search := &mockSearch{resp: &searchuc.Response{
		Query:    "phnoe",
		Page:     2,
		PageSize: 20,
		Result: result.New(1, 1, []result.Match{
			result.NewMatch(7, 1500, map[string]string{"title": "phone"}),
		}),
		Suggestion: &domsuggest.Correction{Text: "<strong><i>phone</i></strong>", Query: "phone"},
	}}
	c := &Client{searchSvc: search}

	res, err := c.Query(context.Background(), "catalog", "phnoe", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if search.gotArg.model != "catalog" || search.gotArg.page != 2 {
		t.Errorf("args = %+v", search.gotArg)
	}
	if res.Total != 1 || res.TotalFound != 1 || len(res.Matches) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if m := res.Matches[0]; m.ID != 7 || m.Weight != 1500 || m.Attrs["title"] != "phone" {
		t.Errorf("match = %+v", m)
	}
	if res.Suggestion == nil || res.Suggestion.Query != "phone" {
		t.Errorf("suggestion = %+v", res.Suggestion)
	}
}

func TestClient_Query_Error(t *testing.T) {
	c := &Client{searchSvc: &mockSearch{err: domain.ErrModelNotFound}}

	_, err := c.Query(context.Background(), "nope", "x", 1)
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestClient_Models_Sorted(t *testing.T) {
	c := &Client{searchSvc: &mockSearch{models: []string{"zeta", "alpha", "mid"}}}

	got := c.Models()
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Models() = %v, want %v", got, want)
	}
}

func TestClient_Suggest(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c := &Client{}
		s, err := c.Suggest(context.Background(), "phnoe")
		if err != nil || s != nil {
			t.Errorf("Suggest() = %v, %v; want nil, nil", s, err)
		}
	})

	t.Run("correction", func(t *testing.T) {
		c := &Client{suggestSvc: &mockSuggest{corr: &domsuggest.Correction{Text: "t", Query: "phone"}}}
		s, err := c.Suggest(context.Background(), "phnoe")
		if err != nil {
			t.Fatalf("Suggest: %v", err)
		}
		if s == nil || s.Query != "phone" {
			t.Errorf("Suggest() = %+v", s)
		}
	})

	t.Run("error", func(t *testing.T) {
		c := &Client{suggestSvc: &mockSuggest{err: domain.ErrNotConnected}}
		if _, err := c.Suggest(context.Background(), "x"); !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})
}

func TestClient_Upsert(t *testing.T) {
	idx := &mockIndexing{}
	c := &Client{indexSvc: idx}

	err := c.Upsert(context.Background(), "products_rt", 42, map[string]any{"title": "phone"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if idx.doc.ID != 42 || idx.doc.Fields["title"] != "phone" {
		t.Errorf("doc = %+v", idx.doc)
	}
}

func TestClient_Upsert_Disabled(t *testing.T) {
	c := &Client{indexSvc: &mockIndexing{err: domain.ErrIndexingDisabled}}

	err := c.Upsert(context.Background(), "products_rt", 1, map[string]any{"title": "x"})
	if !errors.Is(err, ErrIndexingDisabled) {
		t.Fatalf("expected ErrIndexingDisabled, got %v", err)
	}
}

func TestClient_Delete(t *testing.T) {
	idx := &mockIndexing{}
	c := &Client{indexSvc: idx}

	if err := c.Delete(context.Background(), "products_rt", 1, 2, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !reflect.DeepEqual(idx.deleted, []uint64{1, 2, 3}) {
		t.Errorf("deleted = %v", idx.deleted)
	}
}

func TestClient_Health(t *testing.T) {
	c := &Client{healthSvc: &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"sphinx":     healthuc.CheckOK,
			"dictionary": healthuc.CheckEmpty,
		},
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", h.Status)
	}
	if h.Checks["dictionary"] != "empty" || h.Checks["sphinx"] != "ok" {
		t.Errorf("Checks = %v", h.Checks)
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

// --- wired client over a mocked engine ---

func newWiredClient(t *testing.T, opts ...Option) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	store := sphinxql.NewClientForTest(pool)
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("observer: %v", err)
	}
	return wireClient(store, cfg, obs), mock
}

func TestWiredClient_Query(t *testing.T) {
	c, mock := newWiredClient(t,
		WithModel(Model{Name: "catalog", Indexes: []string{"products"}}),
		WithoutSuggestions(),
	)

	mock.ExpectQuery(`FROM products WHERE MATCH\(\?\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "weight", "title"}).
			AddRow(1, 2500, "phone case").
			AddRow(2, 1700, "phone stand"))
	mock.ExpectQuery("SHOW META").
		WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}).
			AddRow("total", "2").
			AddRow("total_found", "2"))

	res, err := c.Query(context.Background(), "catalog", "phone", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.TotalFound != 2 || len(res.Matches) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Matches[0].ID != 1 || res.Matches[0].Attrs["title"] != "phone case" {
		t.Errorf("first match = %+v", res.Matches[0])
	}
	if res.Suggestion != nil {
		t.Errorf("suggestion = %+v, want nil with suggestions disabled", res.Suggestion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWiredClient_IndexingDisabled(t *testing.T) {
	c, mock := newWiredClient(t)

	err := c.Upsert(context.Background(), "products_rt", 1, map[string]any{"title": "x"})
	if !errors.Is(err, ErrIndexingDisabled) {
		t.Fatalf("expected ErrIndexingDisabled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("engine touched: %v", err)
	}
}

func TestWiredClient_UnknownModel(t *testing.T) {
	c, _ := newWiredClient(t)

	if _, err := c.Query(context.Background(), "missing", "x", 1); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}
