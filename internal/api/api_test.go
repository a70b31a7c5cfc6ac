// ABOUTME: Tests for the HTTP API router and handlers.
// ABOUTME: Drives the gin engine through httptest against a temp store.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/realtime"
	"github.com/harperreed/levelup/internal/session"
	"github.com/harperreed/levelup/internal/social"
	"github.com/harperreed/levelup/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   *gin.Engine
	sessions *session.Manager
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(filepath.Join(t.TempDir(), "levelup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	backend, err := localcache.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	sessions := session.NewManager()
	sessions.SignIn(session.Session{UserID: "ada", DisplayName: "Ada"})
	logger := log.New(io.Discard)

	coord := coordinator.New(coordinator.Options{
		Repo:     db,
		Cache:    backend,
		Sessions: sessions,
		Logger:   logger,
	})
	t.Cleanup(func() { _ = coord.Close() })

	svc := social.NewService(db, realtime.NewBroker(), sessions, logger)
	return &testEnv{
		router:   NewRouter(NewHandler(coord, svc, logger), []string{"http://localhost:5173"}),
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	env := setup(t)
	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProfile(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[struct {
		Profile       models.Profile `json:"profile"`
		XPToNextLevel int            `json:"xp_to_next_level"`
		MinutesToRing int            `json:"minutes_to_next_ring"`
	}](t, w)
	assert.Equal(t, "ada", got.Profile.ID)
	assert.Equal(t, 1, got.Profile.Level)
	assert.Equal(t, 100, got.XPToNextLevel)
	assert.Equal(t, 30, got.MinutesToRing)
}

func TestAddWorkout(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/workouts", gin.H{"minutes": 60})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[coordinator.WorkoutResult](t, w)
	assert.Equal(t, 120, res.XPGained)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Profile.Level)
	assert.Equal(t, 1, res.LootBoxesGranted)
}

func TestAddWorkoutValidation(t *testing.T) {
	env := setup(t)

	for _, body := range []any{gin.H{}, gin.H{"minutes": 0}, gin.H{"minutes": -5}} {
		w := env.do(t, http.MethodPost, "/api/workouts", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestAddWater(t *testing.T) {
	env := setup(t)

	env.do(t, http.MethodPost, "/api/water", gin.H{"ml": 250})
	w := env.do(t, http.MethodPost, "/api/water", gin.H{"ml": 500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	bucket := decode[models.WaterBucket](t, w)
	assert.Equal(t, 750, bucket.ML)
}

func TestClaimQuestTwice(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/quests/pushups/claim", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[coordinator.ClaimResult](t, w)
	assert.Equal(t, 20, res.XPGained)

	w = env.do(t, http.MethodPost, "/api/quests/plank/claim", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body, "next_available")

	board := env.do(t, http.MethodGet, "/api/quests", nil)
	require.Equal(t, http.StatusOK, board.Code)
	assert.True(t, decode[coordinator.QuestBoard](t, board).ClaimedToday)
}

func TestClaimUnknownQuest(t *testing.T) {
	env := setup(t)
	w := env.do(t, http.MethodPost, "/api/quests/nope/claim", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenLootBox(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/lootboxes/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	env.do(t, http.MethodPost, "/api/workouts", gin.H{"minutes": 50})
	w = env.do(t, http.MethodPost, "/api/lootboxes/open", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[coordinator.LootResult](t, w).Remaining)
}

func TestRewards(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/rewards", gin.H{"level": 5, "title": "New shoes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/rewards", gin.H{"title": "No level"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/rewards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rewards := decode[[]models.Reward](t, w)

	var found bool
	for _, r := range rewards {
		if r.Title == "New shoes" {
			found = true
			assert.False(t, r.Unlocked)
		}
	}
	assert.True(t, found)
}

func TestMessages(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/messages", gin.H{"text": "hello world"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	bob := "bob"
	w = env.do(t, http.MethodPost, "/api/messages", gin.H{"text": "hi bob", "recipient_id": bob})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	global := decode[[]models.ChatMessage](t, w)
	require.Len(t, global, 1)
	assert.Equal(t, "hello world", global[0].Text)

	w = env.do(t, http.MethodGet, "/api/messages?peer=bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	direct := decode[[]models.ChatMessage](t, w)
	require.Len(t, direct, 1)
	assert.Equal(t, "hi bob", direct[0].Text)
}

func TestLeaderboard(t *testing.T) {
	env := setup(t)

	env.do(t, http.MethodPost, "/api/workouts", gin.H{"minutes": 10})
	w := env.do(t, http.MethodGet, "/api/leaderboard?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries := decode[[]models.LeaderboardEntry](t, w)
	require.NotEmpty(t, entries)
	assert.Equal(t, "ada", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestSignedOut(t *testing.T) {
	env := setup(t)
	env.sessions.SignOut()

	for _, path := range []string{"/api/profile", "/api/rewards", "/api/quests"} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := env.do(t, http.MethodPost, "/api/messages", gin.H{"text": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	env := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

type sseEvent struct {
	name string
	data string
}

// streamEvents opens /api/events on a live server and returns parsed events.
func streamEvents(t *testing.T, env *testEnv, query string) <-chan sseEvent {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events"+query, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := make(chan sseEvent, 64)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(resp.Body)
		var ev sseEvent
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				ev.name = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				ev.data = strings.TrimPrefix(line, "data:")
			case line == "" && ev.name != "":
				events <- ev
				ev = sseEvent{}
			}
		}
	}()
	return events
}

// waitFor returns the first event for which match is true.
func waitFor(t *testing.T, events <-chan sseEvent, match func(sseEvent) bool) sseEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed")
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestEventsStreamsPublishedState(t *testing.T) {
	env := setup(t)
	events := streamEvents(t, env, "?topics=profile,lootboxes")

	w := env.do(t, http.MethodPost, "/api/workouts", gin.H{"minutes": 60})
	require.Equal(t, http.StatusCreated, w.Code)

	ev := waitFor(t, events, func(ev sseEvent) bool {
		if ev.name != coordinator.TopicProfile {
			return false
		}
		var p models.Profile
		return json.Unmarshal([]byte(ev.data), &p) == nil && p.Level == 2
	})
	var p models.Profile
	require.NoError(t, json.Unmarshal([]byte(ev.data), &p))
	assert.Equal(t, 120, p.XP)

	ev = waitFor(t, events, func(ev sseEvent) bool { return ev.name == coordinator.TopicLootBoxes })
	var inv models.LootBoxInventory
	require.NoError(t, json.Unmarshal([]byte(ev.data), &inv))
	assert.Equal(t, 1, inv.Count)

	// Signing out resets what the client shows.
	env.sessions.SignOut()
	waitFor(t, events, func(ev sseEvent) bool {
		return ev.name == coordinator.TopicProfile && ev.data == "null"
	})
}

func TestEventsUnknownTopic(t *testing.T) {
	env := setup(t)
	w := env.do(t, http.MethodGet, "/api/events?topics=profile,karma", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "karma")
}
