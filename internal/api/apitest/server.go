// Package apitest is an in-memory stand-in for the inventory backend.
// Tests point the client at it to exercise the full request cycle:
// login, bearer auth, paging, mutations, and forced failures.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"phonecrm/internal/model"
)

// Route keys for call counting and failure injection.
const (
	RouteLogin  = "POST /login"
	RouteList   = "GET /items"
	RouteStats  = "GET /stats"
	RouteCreate = "POST /items"
	RouteUpdate = "PUT /items/{id}"
	RouteDelete = "DELETE /items/{id}"
	RouteReturn = "POST /items/{id}/return"
)

type Server struct {
	URL string

	mu       sync.Mutex
	username string
	password string
	token    string
	tabs     map[string][]model.Item
	nextID   int64
	calls    map[string]int
	fail     map[string]int // route → status forced on the next call

	hts *httptest.Server
}

// New starts a fake backend and tears it down with the test. Default
// credentials are admin/password with token "test-token".
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		username: "admin",
		password: "password",
		token:    "test-token",
		tabs:     make(map[string][]model.Item),
		nextID:   1,
		calls:    make(map[string]int),
		fail:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Post("/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/items", s.handleList)
		r.Get("/stats", s.handleStats)
		r.Post("/items", s.handleCreate)
		r.Put("/items/{id}", s.handleUpdate)
		r.Delete("/items/{id}", s.handleDelete)
		r.Post("/items/{id}/return", s.handleReturn)
	})

	s.hts = httptest.NewServer(r)
	s.URL = s.hts.URL
	t.Cleanup(s.hts.Close)
	return s
}

// Token is the bearer value the fake accepts.
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Seed inserts rows into a tab, assigning ids to rows that have none.
func (s *Server) Seed(tab string, items ...model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if it.ID == 0 {
			it.ID = s.nextID
			s.nextID++
		} else if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
		s.tabs[tab] = append(s.tabs[tab], it)
	}
}

// Items returns a copy of a tab's rows.
func (s *Server) Items(tab string) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.tabs[tab]...)
}

// Calls reports how many times a route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// ForceStatus makes the next call to route answer with status and a
// generic error body, then reverts to normal behavior.
func (s *Server) ForceStatus(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = status
}

// intercept counts the call and serves a forced failure if one is
// armed. Returns true when the request was consumed.
func (s *Server) intercept(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	s.calls[route]++
	status, forced := s.fail[route]
	if forced {
		delete(s.fail, route)
	}
	s.mu.Unlock()

	if forced {
		jsonError(w, status, "forced failure")
		return true
	}
	return false
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			jsonError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteLogin) {
		return
	}
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	ok := creds.Username == s.username && creds.Password == s.password
	token := s.token
	s.mu.Unlock()
	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteList) {
		return
	}
	tab := r.URL.Query().Get("tab")
	search := strings.ToLower(r.URL.Query().Get("search"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 500
	}

	s.mu.Lock()
	rows := append([]model.Item(nil), s.tabs[tab]...)
	s.mu.Unlock()

	if search != "" {
		filtered := rows[:0]
		for _, it := range rows {
			hay := strings.ToLower(it.Owner + " " + it.Model + " " + it.IMEI)
			if strings.Contains(hay, search) {
				filtered = append(filtered, it)
			}
		}
		rows = filtered
	}

	if offset >= len(rows) {
		rows = []model.Item{}
	} else {
		rows = rows[offset:]
		if len(rows) > limit {
			rows = rows[:limit]
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteStats) {
		return
	}
	tab := r.URL.Query().Get("tab")

	s.mu.Lock()
	var stats model.Stats
	for _, it := range s.tabs[tab] {
		stats.TotalRows++
		if it.Sold() {
			stats.SoldPurchaseValue += it.PurchasePrice
			stats.SalesValue += it.SalePrice
			stats.Profit += it.Profit()
		} else {
			stats.TotalItems++
			stats.InventoryValue += it.PurchasePrice
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteCreate) {
		return
	}
	var body struct {
		Tab string `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tab == "" {
		jsonError(w, http.StatusBadRequest, "missing tab")
		return
	}

	s.mu.Lock()
	item := model.Item{
		ID:           s.nextID,
		AcquiredDate: time.Now().Format("2006-01-02"),
	}
	s.nextID++
	s.tabs[body.Tab] = append(s.tabs[body.Tab], item)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteUpdate) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "bad id")
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for tab, rows := range s.tabs {
		for i := range rows {
			if rows[i].ID != id {
				continue
			}
			for field, value := range patch {
				if _, err := rows[i].SetField(field, value); err != nil {
					jsonError(w, http.StatusBadRequest, err.Error())
					return
				}
			}
			s.tabs[tab] = rows
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	jsonError(w, http.StatusNotFound, "item not found")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteDelete) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "bad id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for tab, rows := range s.tabs {
		for i := range rows {
			if rows[i].ID == id {
				s.tabs[tab] = append(rows[:i], rows[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	jsonError(w, http.StatusNotFound, "item not found")
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, RouteReturn) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "bad id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for tab, rows := range s.tabs {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].SoldDate = ""
				rows[i].SalePrice = 0
				s.tabs[tab] = rows
				writeJSON(w, http.StatusOK, rows[i])
				return
			}
		}
	}
	jsonError(w, http.StatusNotFound, "item not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
