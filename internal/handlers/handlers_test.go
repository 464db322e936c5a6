package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/areas"
	"swms-portal/internal/gateway"
	"swms-portal/internal/guard"
	"swms-portal/internal/models"
	"swms-portal/internal/nav"
	"swms-portal/internal/session"
	"swms-portal/internal/storage"
	"swms-portal/internal/tasks"
	"swms-portal/internal/viewmodel"
	"swms-portal/internal/websocket"
)

type portal struct {
	router   http.Handler
	sessions *session.Store
	app      *nav.History
	views    *viewmodel.Registry

	mu    sync.Mutex
	calls []string
}

func (p *portal) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, r.Method+" "+r.URL.Path)
}

func (p *portal) called(call string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c == call {
			return true
		}
	}
	return false
}

// newPortal wires the full route table against a fake backend. user, when
// set, is stored as the signed-in session.
func newPortal(t *testing.T, user *models.UserProfile, backend map[string]http.HandlerFunc) *portal {
	t.Helper()
	p := &portal{}

	mux := http.NewServeMux()
	for pattern, h := range backend {
		mux.HandleFunc(pattern, h)
	}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.Close)

	areaAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/areas":
			w.Write([]byte(`{"vadodara_societies_by_area":{"Alkapuri":["Society 1","Society 2","Society 3"]}}`))
		case "/api/areas/Alkapuri":
			w.Write([]byte(`{"area":"Alkapuri","societies":["Society 1","Society 2","Society 3"],"status":"Available"}`))
		case "/":
			w.Write([]byte(`{"message":"SWMS Area API Service","status":"Available","version":"1.0.0"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(areaAPI.Close)

	local := storage.NewMemory()
	p.sessions = session.NewStore(local)
	if user != nil {
		if err := p.sessions.Set("tok", user); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	p.app = nav.NewHistory(nav.LoginPath)

	client := apiclient.New(api.URL, p.sessions, p.app)
	areaClient := areas.NewClient(areaAPI.URL, time.Second, time.Minute)
	t.Cleanup(areaClient.Close)
	hub := websocket.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p.views = viewmodel.NewRegistry(ctx, viewmodel.Deps{
		Sessions:    p.sessions,
		Profile:     gateway.NewProfile(client),
		Schedules:   gateway.NewSchedules(client),
		Complaints:  gateway.NewComplaints(client),
		Users:       gateway.NewUsers(client),
		Areas:       areaClient,
		Completions: tasks.NewLocalLog(local),
		Publisher:   hub,
	}, time.Hour, time.Hour)
	t.Cleanup(p.views.UnmountAll)

	r := chi.NewRouter()
	Mount(r, Deps{
		Sessions:  p.sessions,
		Auth:      gateway.NewAuth(client, p.sessions),
		Profile:   gateway.NewProfile(client),
		Areas:     areaClient,
		Views:     p.views,
		Hub:       hub,
		Navigator: p.app,
	})
	p.router = r
	return p
}

func (p *portal) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	p.router.ServeHTTP(rr, req)
	return rr
}

func jsonBody(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d (%s)", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != to {
		t.Fatalf("expected redirect to %s, got %s", to, loc)
	}
}

var (
	driver  = models.UserProfile{ID: "d1", FirstName: "Ravi", Email: "ravi@swms.in", Role: models.RoleDriver, Area: "Alkapuri", Status: models.DriverActive}
	citizen = models.UserProfile{ID: "u1", FirstName: "Asha", Email: "asha@swms.in", Role: models.RoleUser}
	admin   = models.UserProfile{ID: "a1", FirstName: "Admin", Email: "admin@swms.in", Role: models.RoleAdmin}
)

func TestGuardRedirects(t *testing.T) {
	tests := []struct {
		name string
		user *models.UserProfile
		path string
		to   string
	}{
		{"signed out user dashboard", nil, "/user/dashboard", nav.LoginPath},
		{"signed out admin dashboard", nil, "/admin/dashboard", nav.AdminLoginPath},
		{"citizen on admin page", &citizen, "/admin/complaints", nav.AdminLoginPath},
		{"unknown route", &citizen, "/nowhere", nav.LoginPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPortal(t, tt.user, nil)
			expectRedirect(t, p.do(http.MethodGet, tt.path, nil), tt.to)
		})
	}
}

func TestLoginLandsOnRoleDashboard(t *testing.T) {
	p := newPortal(t, nil, map[string]http.HandlerFunc{
		"POST /auth/login": jsonBody(`{"token":"Bearer abc","user":{"_id":"d1","firstName":"Ravi","email":"ravi@swms.in","role":"driver"}}`),
	})

	rr := p.do(http.MethodPost, "/login", LoginRequest{Email: "ravi@swms.in", Password: "pw"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RedirectTo != "/driver/dashboard" {
		t.Fatalf("expected redirect to /driver/dashboard, got %s", resp.RedirectTo)
	}
	if p.app.Location() != "/driver/dashboard" {
		t.Fatalf("expected app location /driver/dashboard, got %s", p.app.Location())
	}
	if sess := p.sessions.Get(); !sess.Authenticated() || *sess.Token != "abc" {
		t.Fatalf("expected stored session with token abc, got %+v", sess)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	p := newPortal(t, nil, nil)
	rr := p.do(http.MethodPost, "/login", LoginRequest{Email: "ravi@swms.in"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestLoginShowsServerMessage(t *testing.T) {
	p := newPortal(t, nil, map[string]http.HandlerFunc{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
		},
	})

	rr := p.do(http.MethodPost, "/login", LoginRequest{Email: "x@swms.in", Password: "bad"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid credentials") {
		t.Fatalf("expected server message in body, got %s", rr.Body.String())
	}
}

func TestLogoutClearsSessionAndViews(t *testing.T) {
	p := newPortal(t, &driver, map[string]http.HandlerFunc{
		"GET /profile":            jsonBody(`{"user":{"_id":"d1","role":"driver","area":"Alkapuri"}}`),
		"GET /schedules/assigned": jsonBody(`[]`),
	})

	if rr := p.do(http.MethodGet, "/driver/dashboard", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected dashboard 200, got %d", rr.Code)
	}
	if p.views.Mounted() != 1 {
		t.Fatalf("expected 1 mounted view, got %d", p.views.Mounted())
	}

	if rr := p.do(http.MethodPost, "/logout", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rr.Code)
	}
	if p.sessions.Get().Token != nil {
		t.Fatal("expected token cleared")
	}
	if p.views.Mounted() != 0 {
		t.Fatalf("expected no mounted views, got %d", p.views.Mounted())
	}
	expectRedirect(t, p.do(http.MethodGet, "/driver/dashboard", nil), nav.LoginPath)
}

func TestUnauthorizedBackendRedirectsToLogin(t *testing.T) {
	unauthorized := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}
	p := newPortal(t, &driver, map[string]http.HandlerFunc{
		"GET /profile":            unauthorized,
		"GET /schedules/assigned": unauthorized,
	})

	expectRedirect(t, p.do(http.MethodGet, "/driver/dashboard", nil), nav.LoginPath)
	if p.sessions.Get().Token != nil {
		t.Fatal("expected session cleared after 401")
	}
}

func TestDriverCompletesAreaStop(t *testing.T) {
	p := newPortal(t, &driver, map[string]http.HandlerFunc{
		"GET /profile":            jsonBody(`{"_id":"d1","email":"ravi@swms.in","role":"driver","area":"Alkapuri","status":"active"}`),
		"GET /schedules/assigned": jsonBody(`[]`),
	})

	rr := p.do(http.MethodGet, "/driver/dashboard", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var state viewmodel.DriverState
	json.NewDecoder(rr.Body).Decode(&state)
	if len(state.Tasks) != 3 {
		t.Fatalf("expected 3 open stops, got %d", len(state.Tasks))
	}

	rr = p.do(http.MethodPost, "/driver/tasks/area-2/complete", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	state = viewmodel.DriverState{}
	json.NewDecoder(rr.Body).Decode(&state)

	if state.Stops[1].Status != models.StopCompleted {
		t.Fatalf("expected stop 2 completed, got %s", state.Stops[1].Status)
	}
	if state.Stops[0].Status != models.StopInProgress || state.Stops[2].Status != models.StopPending {
		t.Fatalf("expected stop 1 in progress and stop 3 pending, got %s / %s", state.Stops[0].Status, state.Stops[2].Status)
	}

	rr = p.do(http.MethodGet, "/driver/history", nil)
	var history struct {
		Total int `json:"total"`
	}
	json.NewDecoder(rr.Body).Decode(&history)
	if history.Total != 1 {
		t.Fatalf("expected 1 history entry, got %d", history.Total)
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	p := newPortal(t, &driver, map[string]http.HandlerFunc{
		"GET /profile":            jsonBody(`{"_id":"d1","role":"driver"}`),
		"GET /schedules/assigned": jsonBody(`[]`),
	})

	rr := p.do(http.MethodPost, "/driver/tasks/area-9/complete", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestSubmitComplaintValidates(t *testing.T) {
	p := newPortal(t, &citizen, map[string]http.HandlerFunc{
		"GET /schedules/my":  jsonBody(`[]`),
		"GET /complaints/my": jsonBody(`[]`),
	})

	rr := p.do(http.MethodPost, "/user/complaints", viewmodel.ComplaintForm{Type: "Overflow", Location: "Alkapuri"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if p.called("POST /complaints") {
		t.Fatal("expected no backend call for an invalid form")
	}
}

func TestSubmitComplaintComposesDescription(t *testing.T) {
	var sent models.NewComplaint
	p := newPortal(t, &citizen, map[string]http.HandlerFunc{
		"GET /schedules/my":  jsonBody(`[]`),
		"GET /complaints/my": jsonBody(`[]`),
		"POST /complaints": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&sent)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"_id":"c1","status":"pending"}`))
		},
	})

	rr := p.do(http.MethodPost, "/user/complaints", viewmodel.ComplaintForm{Type: "Overflow", Description: "Bin full", Location: "Alkapuri"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	if sent.Description != "[Overflow] Bin full - Location: Alkapuri" {
		t.Fatalf("unexpected description %q", sent.Description)
	}
	if sent.User != "u1" || !sent.SuggestedBin {
		t.Fatalf("unexpected complaint %+v", sent)
	}
}

func TestServerErrorMessage(t *testing.T) {
	p := newPortal(t, &citizen, map[string]http.HandlerFunc{
		"GET /schedules/my":  jsonBody(`[]`),
		"GET /complaints/my": jsonBody(`[]`),
		"POST /schedules": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	form := viewmodel.ScheduleForm{Date: "2026-10-20", Time: "10:00", Reason: "Renovation", WasteType: "Debris", Address: "12 Race Course Rd"}
	rr := p.do(http.MethodPost, "/user/schedules", form)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Server error. Please try again later.") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestProfileFallsBackToCachedUser(t *testing.T) {
	p := newPortal(t, &citizen, map[string]http.HandlerFunc{
		"GET /profile": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	})

	rr := p.do(http.MethodGet, "/user/profile", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp struct {
		User   models.UserProfile `json:"user"`
		Cached bool               `json:"cached"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if !resp.Cached || resp.User.ID != "u1" {
		t.Fatalf("expected cached user u1, got %+v", resp)
	}
}

func TestAdminComplaintStatus(t *testing.T) {
	p := newPortal(t, &admin, map[string]http.HandlerFunc{
		"GET /auth/users/filter": jsonBody(`[]`),
		"GET /auth/users":        jsonBody(`[]`),
		"GET /complaints":        jsonBody(`[{"_id":"c1","description":"Bin full - Location: Wadi","status":"pending"}]`),
		"PUT /complaints/c1":     jsonBody(`{"_id":"c1","status":"completed"}`),
	})

	rr := p.do(http.MethodPut, "/admin/complaints/c1", statusRequest{Status: "archived"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown status, got %d", rr.Code)
	}

	rr = p.do(http.MethodPut, "/admin/complaints/c1", statusRequest{Status: "completed"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = p.do(http.MethodGet, "/admin/complaints", nil)
	var resp struct {
		Complaints []ComplaintView `json:"complaints"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Complaints) != 1 || resp.Complaints[0].Location != "Wadi" || resp.Complaints[0].Details != "Bin full" {
		t.Fatalf("expected split location, got %+v", resp.Complaints)
	}
}

func TestAdminProfileStaysLocal(t *testing.T) {
	p := newPortal(t, &admin, map[string]http.HandlerFunc{
		"GET /auth/users/filter": jsonBody(`[]`),
		"GET /auth/users":        jsonBody(`[]`),
		"GET /complaints":        jsonBody(`[]`),
	})

	rr := p.do(http.MethodPut, "/admin/profile", models.AdminProfile{FirstName: "Meera", Email: "admin@swms.in"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := p.sessions.AdminProfile(); got.FirstName != "Meera" || got.Role != models.RoleAdmin {
		t.Fatalf("expected stored admin profile, got %+v", got)
	}
	if p.called("PUT /profile") {
		t.Fatal("admin profile must not reach the backend")
	}
}

func TestAreasAndHealth(t *testing.T) {
	p := newPortal(t, nil, nil)

	rr := p.do(http.MethodGet, "/areas", nil)
	var resp struct {
		Areas []string `json:"areas"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Areas) != 1 || resp.Areas[0] != "Alkapuri" {
		t.Fatalf("expected [Alkapuri], got %v", resp.Areas)
	}

	rr = p.do(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "SWMS Area API Service") {
		t.Fatalf("expected area service banner, got %s", rr.Body.String())
	}
}

func TestSessionReportsClaims(t *testing.T) {
	p := newPortal(t, nil, nil)

	rr := p.do(http.MethodGet, "/session", nil)
	var resp SessionResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.State != guard.StateUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %s", resp.State)
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "d1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := p.sessions.Set(token, &driver); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr = p.do(http.MethodGet, "/session", nil)
	resp = SessionResponse{}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.State != guard.StateAuthenticated || resp.Subject != "d1" {
		t.Fatalf("expected authenticated d1, got %+v", resp)
	}
	if resp.ExpiresAt == nil || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, resp.ExpiresAt)
	}
}

func TestSessionVerifyRejected(t *testing.T) {
	p := newPortal(t, &driver, map[string]http.HandlerFunc{
		"GET /auth/me": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	expectRedirect(t, p.do(http.MethodGet, "/session?verify=1", nil), nav.LoginPath)
	if p.sessions.Get().Authenticated() {
		t.Fatal("expected session cleared")
	}
}
