package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/price"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	m.Run()
}

type mockSearchService struct {
	searchFn func(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
	gotReq   searchuc.Request
}

func (m *mockSearchService) Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error) {
	m.gotReq = req
	return m.searchFn(ctx, req)
}

type mockCatalogService struct {
	reindexFn func(ctx context.Context) (int, error)
	rebuildFn func(ctx context.Context) (int, error)
}

func (m *mockCatalogService) Reindex(ctx context.Context) (int, error) {
	return m.reindexFn(ctx)
}

func (m *mockCatalogService) Rebuild(ctx context.Context) (int, error) {
	return m.rebuildFn(ctx)
}

type mockHealthService struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthService) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

func newTestServer(search *mockSearchService, catalog *mockCatalogService, health *mockHealthService) http.Handler {
	if search == nil {
		search = &mockSearchService{
			searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
				return searchuc.Response{}, nil
			},
		}
	}
	if catalog == nil {
		catalog = &mockCatalogService{
			reindexFn: func(context.Context) (int, error) { return 0, nil },
		}
	}
	if health == nil {
		health = &mockHealthService{
			checkFn: func(context.Context) healthuc.Report {
				return healthuc.Report{Status: healthuc.Healthy}
			},
		}
	}

	s := NewServer(search, catalog, health, zap.NewNop())
	r := chirouter.NewRouter()
	s.RegisterRoutes(r)
	return r
}

func ptr(v float64) *float64 { return &v }

func TestSearch_OK(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			rng := price.Range{Max: ptr(30)}
			return searchuc.Response{
				Results: []result.Result{
					result.New("p1", 0.91, "Wireless Mouse", "Compact mouse", "electronics", 24.99),
				},
				CleanedQuery: "wireless mouse",
				Range:        rng,
			}, nil
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=wireless+mouse+under+30+dollars", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Query != "wireless mouse under 30 dollars" {
		t.Errorf("query: got %q", resp.Query)
	}
	if resp.CleanedQuery != "wireless mouse" {
		t.Errorf("cleaned query: got %q", resp.CleanedQuery)
	}
	if resp.MinPrice != nil {
		t.Errorf("min price: got %v, want nil", *resp.MinPrice)
	}
	if resp.MaxPrice == nil || *resp.MaxPrice != 30 {
		t.Errorf("max price: got %v, want 30", resp.MaxPrice)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(resp.Items))
	}
	item := resp.Items[0]
	if item.ID != "p1" || item.Name != "Wireless Mouse" || item.Price != 24.99 || item.Score != 0.91 {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestSearch_Defaults(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, nil
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=notebook", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if search.gotReq.TopK != DefaultTopK {
		t.Errorf("top_k default: got %d, want %d", search.gotReq.TopK, DefaultTopK)
	}
	if search.gotReq.MinScore != DefaultScoreThreshold {
		t.Errorf("score threshold default: got %v, want %v", search.gotReq.MinScore, DefaultScoreThreshold)
	}
	if search.gotReq.Category != "" {
		t.Errorf("category default: got %q, want empty", search.gotReq.Category)
	}
}

func TestSearch_ConfiguredDefaults(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, nil
		},
	}
	s := NewServer(search, &mockCatalogService{}, &mockHealthService{}, zap.NewNop(),
		WithSearchDefaults(16, 0.35))
	r := chirouter.NewRouter()
	s.RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/search?q=notebook", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if search.gotReq.TopK != 16 {
		t.Errorf("top_k: got %d, want 16", search.gotReq.TopK)
	}
	if search.gotReq.MinScore != 0.35 {
		t.Errorf("score threshold: got %v, want 0.35", search.gotReq.MinScore)
	}
}

func TestSearch_ParamsForwarded(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, nil
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=lamp&top_k=5&score_threshold=0.5&category=lighting", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if search.gotReq.TopK != 5 {
		t.Errorf("top_k: got %d, want 5", search.gotReq.TopK)
	}
	if search.gotReq.MinScore != 0.5 {
		t.Errorf("score threshold: got %v, want 0.5", search.gotReq.MinScore)
	}
	if search.gotReq.Category != "lighting" {
		t.Errorf("category: got %q, want lighting", search.gotReq.Category)
	}
}

func TestSearch_BadParams_400(t *testing.T) {
	handler := newTestServer(nil, nil, nil)

	for _, query := range []string{
		"/search?q=lamp&top_k=five",
		"/search?q=lamp&score_threshold=high",
	} {
		req := httptest.NewRequest("GET", query, http.NoBody)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", query, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestSearch_InvalidQuery_400(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, fmt.Errorf("query is empty: %w", domain.ErrInvalidQuery)
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=+", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestSearch_EmbeddingError_502(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, fmt.Errorf("embed query: %w", domain.ErrEmbeddingProviderError)
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=lamp", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestSearch_UnknownError_500(t *testing.T) {
	search := &mockSearchService{
		searchFn: func(context.Context, searchuc.Request) (searchuc.Response, error) {
			return searchuc.Response{}, fmt.Errorf("connection refused")
		},
	}
	handler := newTestServer(search, nil, nil)

	req := httptest.NewRequest("GET", "/search?q=lamp", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Message != "internal error" {
		t.Errorf("message: got %q, want generic", errResp.Message)
	}
}

func TestReindex_OK(t *testing.T) {
	catalog := &mockCatalogService{
		reindexFn: func(context.Context) (int, error) { return 42, nil },
	}
	handler := newTestServer(nil, catalog, nil)

	req := httptest.NewRequest("POST", "/reindex", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	var resp reindexResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.Indexed != 42 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReindex_RebuildParam(t *testing.T) {
	var reindexed, rebuilt bool
	catalog := &mockCatalogService{
		reindexFn: func(context.Context) (int, error) {
			reindexed = true
			return 0, nil
		},
		rebuildFn: func(context.Context) (int, error) {
			rebuilt = true
			return 5, nil
		},
	}
	handler := newTestServer(nil, catalog, nil)

	req := httptest.NewRequest("POST", "/reindex?rebuild=true", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !rebuilt || reindexed {
		t.Errorf("rebuilt=%v reindexed=%v, want rebuild only", rebuilt, reindexed)
	}

	var resp reindexResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Indexed != 5 {
		t.Errorf("indexed: got %d, want 5", resp.Indexed)
	}
}

func TestReindex_CatalogError_400(t *testing.T) {
	catalog := &mockCatalogService{
		reindexFn: func(context.Context) (int, error) {
			return 0, fmt.Errorf("duplicate product id: %w", domain.ErrInvalidCatalog)
		},
	}
	handler := newTestServer(nil, catalog, nil)

	req := httptest.NewRequest("POST", "/reindex", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHealth_Degraded_Still200(t *testing.T) {
	health := &mockHealthService{
		checkFn: func(context.Context) healthuc.Report {
			return healthuc.Report{
				Status: healthuc.Degraded,
				Checks: map[string]healthuc.CheckResult{
					"database":  healthuc.CheckOK,
					"embedding": healthuc.CheckError,
				},
				Indexed: 7,
			}
		},
	}
	handler := newTestServer(nil, nil, health)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(healthuc.Degraded) {
		t.Errorf("status: got %q", resp.Status)
	}
	if resp.Checks["embedding"] != string(healthuc.CheckError) {
		t.Errorf("embedding check: got %q", resp.Checks["embedding"])
	}
	if resp.Indexed != 7 {
		t.Errorf("indexed: got %d, want 7", resp.Indexed)
	}
}
