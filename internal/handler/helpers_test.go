package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"ifrs-console/internal/apiclient"
	"ifrs-console/internal/middleware"
	"ifrs-console/internal/model"
	"ifrs-console/internal/session"
	"ifrs-console/internal/store"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

// fakeBackend is an in-process analysis service that records every call.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu         sync.Mutex
	calls      []string
	fail       map[string]failure
	users      map[string]*model.User
	documents  []model.Document
	reports    []model.Report
	compliance *model.ComplianceResult
	climate    *model.ClimateResult
	analysis   *model.DocumentAnalysis
	newReport  model.Report
	adminUsers []model.User
}

// openPath lists the backend routes that take no bearer token.
var openPath = map[string]bool{"/auth/login": true, "/auth/register": true, "/health": true}

type failure struct {
	status int
	detail string
}

func stamp(y int, m time.Month, d int) model.Time {
	return model.Time{Time: time.Date(y, m, d, 10, 20, 30, 123000000, time.UTC)}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	f := &fakeBackend{
		t:    t,
		fail: map[string]failure{},
		users: map[string]*model.User{
			"tok-analyst": {ID: "u1", Email: "ana@example.com", Role: model.RoleAnalyst, CompanyID: "c1", CreatedAt: stamp(2024, 5, 1)},
			"tok-admin":   {ID: "u9", Email: "root@example.com", Role: model.RoleAdmin, CompanyID: "c1"},
			"tok-nocomp":  {ID: "u5", Email: "new@example.com", Role: model.RoleViewer},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, model.TokenResponse{AccessToken: "tok-analyst", TokenType: "bearer"})
	})
	mux.HandleFunc("GET /auth/me", f.me)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) { f.json(w, map[string]string{"status": "ok"}) })
	mux.HandleFunc("GET /dashboard/summary/{company}", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, model.DashboardSummary{CompanyName: "Acme", OverallComplianceScore: 72, ClimateRiskScore: 35, DocumentCount: len(f.documents)})
	})
	mux.HandleFunc("GET /documents/company/{company}", func(w http.ResponseWriter, r *http.Request) { f.json(w, f.documents) })
	mux.HandleFunc("POST /documents/upload", f.upload)
	mux.HandleFunc("DELETE /documents/{id}", func(w http.ResponseWriter, r *http.Request) { f.json(w, map[string]string{"message": "deleted"}) })
	mux.HandleFunc("GET /analysis/{doc}", func(w http.ResponseWriter, r *http.Request) { f.jsonOr404(w, f.compliance) })
	mux.HandleFunc("POST /analysis/run/{doc}", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, model.ComplianceResult{ID: "cr2", DocumentID: r.PathValue("doc"), S1Score: 88, S2Score: 64, GapSummary: "fresh run"})
	})
	mux.HandleFunc("GET /climate/{doc}", func(w http.ResponseWriter, r *http.Request) { f.jsonOr404(w, f.climate) })
	mux.HandleFunc("POST /climate/analyze/{doc}", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, model.ClimateResult{ID: "cl2", DocumentID: r.PathValue("doc"), PhysicalRiskScore: 50})
	})
	mux.HandleFunc("GET /document-analysis/{doc}", func(w http.ResponseWriter, r *http.Request) { f.jsonOr404(w, f.analysis) })
	mux.HandleFunc("POST /document-analysis/run/{doc}", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, model.DocumentAnalysis{ID: "da2", DocumentID: r.PathValue("doc"), Scores: map[string]any{"s1_overall": 90}})
	})
	mux.HandleFunc("GET /reports/{doc}", func(w http.ResponseWriter, r *http.Request) { f.json(w, f.reports) })
	mux.HandleFunc("POST /reports/generate", f.generate)
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) { f.json(w, f.adminUsers) })
	mux.HandleFunc("DELETE /admin/users/{id}", func(w http.ResponseWriter, r *http.Request) { f.json(w, map[string]string{"message": "deleted"}) })
	mux.HandleFunc("POST /admin/companies", f.createCompany)
	mux.HandleFunc("GET /admin/audit", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, []model.AuditEntry{{ID: "a1", Action: "delete_user", TargetID: "u3", PerformedBy: "u9"}})
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls = append(f.calls, key)
		fl, failing := f.fail[key]
		f.mu.Unlock()
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fl.status)
			json.NewEncoder(w).Encode(map[string]string{"detail": fl.detail})
			return
		}
		if !openPath[r.URL.Path] && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// zonedStamp matches an RFC 3339 timestamp inside encoded JSON.
var zonedStamp = regexp.MustCompile(`"(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?)(?:Z|[+-]\d{2}:\d{2})"`)

// json writes v the way the analysis service does: datetimes are naive
// ISO strings with no zone suffix.
func (f *fakeBackend) json(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(zonedStamp.ReplaceAll(data, []byte(`"$1"`)))
}

func (f *fakeBackend) jsonOr404(w http.ResponseWriter, v any) {
	switch t := v.(type) {
	case *model.ComplianceResult:
		if t == nil {
			f.notFound(w)
			return
		}
	case *model.ClimateResult:
		if t == nil {
			f.notFound(w)
			return
		}
	case *model.DocumentAnalysis:
		if t == nil {
			f.notFound(w)
			return
		}
	}
	f.json(w, v)
}

func (f *fakeBackend) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, `{"detail":"No analysis found"}`)
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Invalid credentials"}`)
		return
	}
	f.json(w, model.TokenResponse{AccessToken: "tok-analyst", TokenType: "bearer"})
}

func (f *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	u, ok := f.users[tok]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Invalid token"}`)
		return
	}
	f.json(w, u)
}

func (f *fakeBackend) upload(w http.ResponseWriter, r *http.Request) {
	_, fh, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	doc := model.Document{ID: "d-new", FileName: fh.Filename, Status: model.StatusProcessing, CompanyID: "c1"}
	f.mu.Lock()
	f.documents = append(f.documents, doc)
	f.mu.Unlock()
	f.json(w, doc)
}

func (f *fakeBackend) generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateReportRequest
	json.NewDecoder(r.Body).Decode(&req)
	rep := f.newReport
	rep.DocumentID = req.DocumentID
	rep.ReportType = req.ReportType
	f.json(w, rep)
}

func (f *fakeBackend) createCompany(w http.ResponseWriter, r *http.Request) {
	var req model.CompanyRequest
	json.NewDecoder(r.Body).Decode(&req)
	f.json(w, model.Company{ID: "co-7", Name: req.Name, Industry: req.Industry, Region: req.Region})
}

// count returns how many calls matched key ("METHOD /path").
func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// callsExceptMe lists every call other than session resolution.
func (f *fakeBackend) callsExceptMe() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c != "GET /auth/me" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) failWith(key string, status int, detail string) {
	f.mu.Lock()
	f.fail[key] = failure{status: status, detail: detail}
	f.mu.Unlock()
}

type testEnv struct {
	router  *gin.Engine
	backend *fakeBackend
	deps    *Deps
	codec   *session.CookieCodec
	tokens  *store.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimit(t, 50<<20)
}

func newTestEnvWithLimit(t *testing.T, limit int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := newFakeBackend(t)
	api := apiclient.New(backend.srv.URL, 5*time.Second)
	tokens := store.NewMemoryStore(store.MemoryConfig{})
	codec := session.NewCookieCodec("handler-test-secret", time.Hour)
	deps := &Deps{
		API:      api,
		Sessions: session.NewManager(api, tokens),
		Cookies:  middleware.Cookies{Codec: codec},
		Busy:     view.NewBusy(),
	}

	renderer, err := web.New()
	require.NoError(t, err)
	r := gin.New()
	r.HTMLRender = renderer
	health := NewHealthHandler(api, func() any { return tokens.Stats() })
	r.GET("/healthz", health.Healthz)
	pages := r.Group("", middleware.Session(deps.Cookies, deps.Sessions))
	pages.GET("/api/session", health.Session)
	New(deps, limit).Mount(pages)

	return &testEnv{router: r, backend: backend, deps: deps, codec: codec, tokens: tokens}
}

// signIn stores tok under a fresh session id and returns its cookie.
func (e *testEnv) signIn(t *testing.T, tok string) (*http.Cookie, string) {
	t.Helper()
	sid := session.NewID()
	require.NoError(t, e.tokens.Save(context.Background(), sid, tok))
	raw, err := e.codec.Encode(sid)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: raw}, sid
}

func (e *testEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
