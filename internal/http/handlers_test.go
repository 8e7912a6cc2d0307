package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/config"
	"github.com/mauv0809/courtqueue/internal/database"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/mauv0809/courtqueue/internal/metrics"
	"github.com/mauv0809/courtqueue/internal/notifier"
	"github.com/mauv0809/courtqueue/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testPassword = "letmein"

var testCatalog = config.Catalog{
	TournamentTitles: []string{"Spring Open"},
	Courts:           []config.Court{{Tournament: "Spring Open", Place: "Central", Court: "A"}},
	Groups:           []string{"Friday Club"},
	RoundTypes:       []string{"Round of 16", "Final"},
	Genders:          []string{"Men", "Women"},
	MatchTypes:       []string{"Singles", "Doubles"},
}

// setupTestServer initializes a new server with an in-memory database and mock side effects.
func setupTestServer(t *testing.T) (*Server, *notifier.Mock) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notif := notifier.NewMock()
	svc := lifecycle.New(match.New(db), notif, metricsSvc, pubsub.NewMock(), testCatalog, false)

	gate, err := auth.NewGate(config.AuthConfig{
		Password:    testPassword,
		TokenSecret: "test-token-secret",
		LoginRate:   1,
		LoginBurst:  3,
	})
	require.NoError(t, err)

	return NewServer(svc, gate, metricsSvc, metricsHandler, []string{"*"}), notif
}

func doRequest(t *testing.T, s *Server, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	rr := doRequest(t, s, http.MethodPost, "/auth/login", "", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func registration(p1, p2 string) lifecycle.Registration {
	return lifecycle.Registration{
		Scope:   match.CourtScope("Spring Open", "Central", "A"),
		Tags:    &match.Tags{RoundType: "Final", Gender: "Women", MatchType: "Singles"},
		Player1: p1,
		Player2: p2,
	}
}

func TestHealthCheckHandler(t *testing.T) {
	s, _ := setupTestServer(t)
	rr := doRequest(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestOptionsHandler(t *testing.T) {
	s, _ := setupTestServer(t)
	rr := doRequest(t, s, http.MethodGet, "/options", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	catalog := decode[config.Catalog](t, rr)
	assert.Equal(t, testCatalog, catalog)
}

func TestLoginHandler(t *testing.T) {
	s, _ := setupTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/auth/login", "", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, s, http.MethodPost, "/auth/login", "", map[string]string{"pass": testPassword})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	token := login(t, s)
	assert.NotEmpty(t, token)

	metricsBody := doRequest(t, s, http.MethodGet, "/metrics", "", nil).Body.String()
	assert.Contains(t, metricsBody, "courtqueue_login_failures_total 1")
}

func TestLoginIsThrottled(t *testing.T) {
	s, _ := setupTestServer(t)
	for i := 0; i < 3; i++ {
		rr := doRequest(t, s, http.MethodPost, "/auth/login", "", map[string]string{"password": "nope"})
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := doRequest(t, s, http.MethodPost, "/auth/login", "", map[string]string{"password": testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestLoginThrottleIgnoresForwardedFor(t *testing.T) {
	s, _ := setupTestServer(t)
	send := func(forwarded, password string) int {
		raw, err := json.Marshal(map[string]string{"password": password})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(raw))
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusUnauthorized, send("198.51.100."+strconv.Itoa(i), "nope"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.99", testPassword))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientKey(req))

	req.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", clientKey(req))
}

func TestOverlappingVerboseRequestsRestoreLevel(t *testing.T) {
	original := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(original) })
	log.SetLevel(log.WarnLevel)

	verbose.enter()
	verbose.enter()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	verbose.exit()
	assert.Equal(t, log.DebugLevel, log.GetLevel(), "still debug while another verbose request runs")
	verbose.exit()
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestVerboseRequestsInParallel(t *testing.T) {
	original := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(original) })
	log.SetLevel(log.InfoLevel)
	s, _ := setupTestServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
			s.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestMutationsWithoutTokenAreRejected(t *testing.T) {
	s, _ := setupTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/matches", "", registration("Ann", "Bea"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, s, http.MethodPost, "/matches", "not-a-token", registration("Ann", "Bea"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, s, http.MethodDelete, "/matches/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, s, http.MethodGet, "/queue?tournament=Spring+Open&place=Central&court=A", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[queueResponse](t, rr).Entries)
}

func TestQueueFlow(t *testing.T) {
	s, notif := setupTestServer(t)
	token := login(t, s)

	var ids []int64
	for _, players := range [][2]string{{"Ann", "Bea"}, {"Cid", "Dan"}, {"Eve", "Fay"}} {
		rr := doRequest(t, s, http.MethodPost, "/matches", token, registration(players[0], players[1]))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		m := decode[match.Match](t, rr)
		assert.Equal(t, match.StatusPending, m.Status)
		ids = append(ids, m.ID)
	}

	queuePath := "/queue?tournament=Spring+Open&place=Central&court=A"
	rr := doRequest(t, s, http.MethodGet, queuePath, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	q := decode[queueResponse](t, rr)
	require.Len(t, q.Entries, 3)
	assert.Equal(t, "Spring Open/Central/A", q.Scope)
	for i, e := range q.Entries {
		assert.Equal(t, i+1, e.Position)
		assert.Equal(t, ids[i], e.ID)
	}
	assert.Equal(t, "Final", q.Entries[0].RoundType)

	rr = doRequest(t, s, http.MethodPost, "/matches/"+itoa(ids[0])+"/result", token, map[string]int{"score1": 6, "score2": 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	finished := decode[match.Match](t, rr)
	assert.Equal(t, match.StatusFinished, finished.Status)
	assert.Equal(t, 1, notif.ResultNotifications())

	q = decode[queueResponse](t, doRequest(t, s, http.MethodGet, queuePath, "", nil))
	require.Len(t, q.Entries, 2)
	assert.Equal(t, ids[1], q.Entries[0].ID)
	assert.Equal(t, 1, q.Entries[0].Position)

	rr = doRequest(t, s, http.MethodPatch, "/matches/"+itoa(ids[1]), token, map[string]string{"player1": "Cyd"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Cyd", decode[match.Match](t, rr).Player1)

	rr = doRequest(t, s, http.MethodDelete, "/matches/"+itoa(ids[2]), token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doRequest(t, s, http.MethodGet, "/matches/"+itoa(ids[2]), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	results := decode[[]match.Match](t, doRequest(t, s, http.MethodGet, "/results?player=ann", "", nil))
	require.Len(t, results, 1)
	assert.Equal(t, ids[0], results[0].ID)
}

func TestRecordResultDryRun(t *testing.T) {
	s, notif := setupTestServer(t)
	token := login(t, s)

	m := decode[match.Match](t, doRequest(t, s, http.MethodPost, "/matches", token, registration("Ann", "Bea")))
	rr := doRequest(t, s, http.MethodPost, "/matches/"+itoa(m.ID)+"/result?dry_run=true", token, map[string]int{"score1": 1, "score2": 0})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, notif.SendResultNotificationCalls, 1)
	assert.True(t, notif.SendResultNotificationCalls[0].DryRun)
}

func TestErrorMapping(t *testing.T) {
	s, _ := setupTestServer(t)
	token := login(t, s)
	m := decode[match.Match](t, doRequest(t, s, http.MethodPost, "/matches", token, registration("Ann", "Bea")))

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{"unknown court", http.MethodPost, "/matches", lifecycle.Registration{Scope: match.CourtScope("Spring Open", "Central", "Z"), Player1: "A", Player2: "B"}, http.StatusBadRequest},
		{"blank player", http.MethodPost, "/matches", registration(" ", "B"), http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/matches", map[string]string{"colour": "red"}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/matches/abc", nil, http.StatusBadRequest},
		{"missing match", http.MethodGet, "/matches/999", nil, http.StatusNotFound},
		{"missing score", http.MethodPost, "/matches/" + itoa(m.ID) + "/result", map[string]int{"score1": 1}, http.StatusBadRequest},
		{"negative score", http.MethodPost, "/matches/" + itoa(m.ID) + "/result", map[string]int{"score1": -1, "score2": 2}, http.StatusBadRequest},
		{"result on missing match", http.MethodPost, "/matches/999/result", map[string]int{"score1": 1, "score2": 2}, http.StatusNotFound},
		{"delete missing match", http.MethodDelete, "/matches/999", nil, http.StatusNotFound},
		{"incomplete scope", http.MethodGet, "/queue?tournament=Spring+Open", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, tt.method, tt.target, token, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestGroupQueueIsSeparate(t *testing.T) {
	s, _ := setupTestServer(t)
	token := login(t, s)

	group := lifecycle.Registration{Scope: match.GroupScope("Friday Club"), Player1: "Pat", Player2: "Quinn"}
	rr := doRequest(t, s, http.MethodPost, "/matches", token, group)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = doRequest(t, s, http.MethodPost, "/matches", token, registration("Ann", "Bea"))
	require.Equal(t, http.StatusCreated, rr.Code)

	q := decode[queueResponse](t, doRequest(t, s, http.MethodGet, "/queue?group=Friday+Club", "", nil))
	require.Len(t, q.Entries, 1)
	assert.Equal(t, "Pat", q.Entries[0].Player1)
	assert.Equal(t, "group/Friday Club", q.Scope)
}

func TestExportResultsHandler(t *testing.T) {
	s, _ := setupTestServer(t)
	token := login(t, s)
	m := decode[match.Match](t, doRequest(t, s, http.MethodPost, "/matches", token, registration("Ann", "Bea")))
	rr := doRequest(t, s, http.MethodPost, "/matches/"+itoa(m.ID)+"/result", token, map[string]int{"score1": 6, "score2": 2})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, http.MethodGet, "/results/export", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "attachment; filename=\"results-"))

	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ann", rows[1][0])
	assert.Equal(t, "6", rows[1][1])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := setupTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/matches", nil)
	req.Header.Set("Origin", "https://queue.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
