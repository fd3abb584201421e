package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperjump/rentassist/internal/chat"
	"github.com/hyperjump/rentassist/internal/compose"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/conversation"
	"github.com/hyperjump/rentassist/internal/indexer"
	"github.com/hyperjump/rentassist/internal/intent"
	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/llm"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/recommend"
	"github.com/hyperjump/rentassist/internal/search"
	"github.com/hyperjump/rentassist/internal/storage/storagetest"
	"go.uber.org/zap"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()
	catalog := storagetest.Seeded(t)
	lx := lexicon.Static(lexicon.Default())
	parser := intent.NewParser(lx)
	engine := search.NewEngine(catalog, &config.SearchConfig{DefaultLimit: 30, MaxLimit: 30, CandidatePool: 200})
	chatEngine := chat.NewEngine(chat.Dependencies{
		Parser:      parser,
		Searcher:    engine,
		Recommender: recommend.NewRecommender(engine, &config.RecommendConfig{}),
		Composer:    compose.NewComposer(lx),
		Generator:   llm.NewMockGenerator(3),
		Store:       conversation.NewMemoryStore(50),
	}, &config.ChatConfig{})
	srv := NewServer(Dependencies{
		Chat:     chatEngine,
		Catalog:  engine,
		Parser:   parser,
		Products: indexer.NewIndexer(catalog, nil),
		Counter:  catalog,
	}, &config.ServerConfig{Port: 8080}, zap.NewNop())
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	w := do(t, testServer(t), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}
}

func TestHandleChat(t *testing.T) {
	h := testServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/chat", `{"message": "máy ảnh rẻ nhất"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.ChatResponse
	decodeBody(t, w, &resp)
	if resp.SessionID == "" {
		t.Error("session id not generated")
	}
	if resp.Intent != models.IntentCheap {
		t.Errorf("intent = %q", resp.Intent)
	}
	if len(resp.Products) != 4 || resp.Products[0].ID != storagetest.ItemFuji {
		t.Errorf("products = %v", models.IDs(resp.Products))
	}
	allowed := map[string]bool{}
	for _, p := range resp.Products {
		allowed[p.ID] = true
	}
	for _, s := range resp.Suggestions {
		if !allowed[s.ID] {
			t.Errorf("suggestion %s not among products", s.ID)
		}
	}
}

func TestHandleChat_validation(t *testing.T) {
	h := testServer(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"message":`, "invalid request body"},
		{"missing message", `{"session_id": "s1"}`, "message is required"},
		{"too long", `{"message": "` + strings.Repeat("a", 2001) + `"}`, "message must be at most 2000 characters"},
	}
	for _, tt := range tests {
		w := do(t, h, http.MethodPost, "/api/v1/chat", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", tt.name, w.Code)
			continue
		}
		var out map[string]string
		decodeBody(t, w, &out)
		if out["error"] != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.name, out["error"], tt.want)
		}
	}
}

func TestHandleSearch(t *testing.T) {
	h := testServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/search", `{"q": "máy ảnh", "sort_type": "cheap", "limit": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out searchResponse
	decodeBody(t, w, &out)
	if out.Count != 2 || out.Products[0].ID != storagetest.ItemFuji || out.Products[1].ID != storagetest.ItemCanon {
		t.Errorf("search = %v", models.IDs(out.Products))
	}

	w = do(t, h, http.MethodPost, "/api/v1/search", `{"q": "máy ảnh", "sort_type": "nearest"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid sort type: status %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/v1/search", `{"q": "máy bay phản lực"}`)
	decodeBody(t, w, &out)
	if out.Count != 0 || out.Products == nil {
		t.Errorf("no-match search = %+v", out)
	}
}

func TestHandleIntent(t *testing.T) {
	w := do(t, testServer(t), http.MethodPost, "/api/v1/intent", `{"message": "tìm giá rẻ nhất tốt nhất"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var parsed models.ParsedFilters
	decodeBody(t, w, &parsed)
	if parsed.Intent != models.IntentCheap || parsed.SortConfig == nil || parsed.BestConfig != nil {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestHandleGetProduct(t *testing.T) {
	h := testServer(t)
	w := do(t, h, http.MethodGet, "/api/v1/products/"+storagetest.ItemCanon, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var p models.ProductCandidate
	decodeBody(t, w, &p)
	if p.ID != storagetest.ItemCanon || !p.IsAvailableNow {
		t.Errorf("detail = %+v", p)
	}

	for _, id := range []string{storagetest.ItemPending, storagetest.ItemDeleted, "not-a-uuid"} {
		if w := do(t, h, http.MethodGet, "/api/v1/products/"+id, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", id, w.Code)
		}
	}
}

func TestHandleProductWrites(t *testing.T) {
	h := testServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/products", `{"title": "Máy chiếu Epson", "base_price": 200000, "quantity": 1, "category": "Máy chiếu"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var created map[string]string
	decodeBody(t, w, &created)
	id := created["id"]

	if w := do(t, h, http.MethodGet, "/api/v1/products/"+id, ""); w.Code != http.StatusOK {
		t.Errorf("new product not readable: %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/products/"+id, ""); w.Code != http.StatusOK {
		t.Errorf("delete: status %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/products/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("deleted product still readable: %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/products/0b7c6a52-1c1e-4c52-9f0e-0000000000ff", ""); w.Code != http.StatusNotFound {
		t.Errorf("delete missing: status %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/products", `{"base_price": 1}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing title: status %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	w := do(t, testServer(t), http.MethodGet, "/api/v1/status", "")
	var out map[string]int
	decodeBody(t, w, &out)
	if out["items"] != 10 {
		t.Errorf("items = %d", out["items"])
	}
}

func TestHandleProductWrites_disabled(t *testing.T) {
	srv := NewServer(Dependencies{}, &config.ServerConfig{}, nil)
	w := do(t, srv.Handler(), http.MethodDelete, "/api/v1/products/x", "")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status: got %d", w.Code)
	}
}
