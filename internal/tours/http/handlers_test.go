package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/memstore"
	"github.com/ambi360/ambi360-backend/internal/tours/progress"
	"github.com/ambi360/ambi360-backend/internal/tours/scenegraph"
	"github.com/ambi360/ambi360-backend/internal/tours/service"
)

const (
	session  = "session-abc-123"
	mainPano = "https://cdn.example.com/lobby.jpg"
)

type fixture struct {
	router  *gin.Engine
	db      *memstore.DB
	project string
	hasher  auth.Hasher
}

// adminHeader stands in for the JWT middleware chain.
func adminHeader(c *gin.Context) {
	if c.GetHeader("X-Admin") != "yes" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin role required"})
		return
	}
	c.Next()
}

func newFixture(t *testing.T, events UnlockSubscriber) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memstore.New()
	hasher := auth.NewHasher(bcrypt.MinCost)
	projectID := db.AddProject(domain.Project{
		Name: "lobby", Title: "Lobby", MainImageURL: mainPano,
		IsPublic: true, IsActive: true, CreatedAt: time.Now(),
	})

	hotspots := service.NewHotspotService(db.Hotspots(), db.Projects(), nil)
	projects := service.NewProjectService(db.Projects(), db.AccessLogs(), hasher, nil)
	tracker := progress.NewTracker(db.Progress(), nil)

	r := gin.New()
	New(hotspots, projects, tracker, events, adminHeader).Register(r.Group("/api/v1"))
	return &fixture{router: r, db: db, project: projectID, hasher: hasher}
}

func (f *fixture) do(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin", "yes")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHotspotLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	door := "https://cdn.example.com/hall.jpg"

	w := f.do(http.MethodPost, "/api/v1/hotspots", gin.H{
		"project_id": f.project, "name": "Hall", "yaw": 90,
		"hotspot_type": "door", "target_image_url": door,
	}, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/v1/hotspots", gin.H{
		"project_id": f.project, "name": "Hall", "yaw": 90,
		"hotspot_type": "door", "target_image_url": door,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Hotspot domain.Hotspot `json:"hotspot"`
	}
	decode(t, w, &created)
	hallID := created.Hotspot.ID
	assert.Equal(t, domain.DefaultIconType, created.Hotspot.IconType)

	w = f.do(http.MethodPost, "/api/v1/hotspots", gin.H{
		"project_id": f.project, "name": "Desk", "pitch": -10, "yaw": 45,
		"hotspot_type": "info", "parent_hotspot_id": hallID,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/v1/hotspots/project/"+f.project, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Hotspots []domain.Hotspot `json:"hotspots"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Hotspots, 2)

	w = f.do(http.MethodGet, "/api/v1/hotspots/project/"+f.project+"/scenes", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var scenes struct {
		Scenes map[string]domain.SceneDescriptor `json:"scenes"`
	}
	decode(t, w, &scenes)
	require.Contains(t, scenes.Scenes, scenegraph.RootSceneID)
	assert.Equal(t, mainPano, scenes.Scenes[scenegraph.RootSceneID].PanoramaSource)
	hall := scenes.Scenes[scenegraph.SceneID(hallID)]
	assert.Equal(t, door, hall.PanoramaSource)
	assert.Len(t, hall.Markers, 1)

	w = f.do(http.MethodPut, "/api/v1/hotspots/"+hallID, gin.H{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/hotspots/"+hallID, gin.H{"yaw": 400}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/hotspots/"+hallID, gin.H{"name": "Great Hall"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodDelete, "/api/v1/hotspots/"+hallID, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodDelete, "/api/v1/hotspots/"+hallID, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHotspotParentCycleRejected(t *testing.T) {
	f := newFixture(t, nil)
	a := f.db.AddHotspot(domain.Hotspot{ProjectID: f.project, Name: "A", HotspotType: domain.HotspotDoor, TargetImageURL: domain.StringPtr("https://x/a.jpg"), IsActive: true})
	b := f.db.AddHotspot(domain.Hotspot{ProjectID: f.project, Name: "B", HotspotType: domain.HotspotDoor, ParentHotspotID: &a, TargetImageURL: domain.StringPtr("https://x/b.jpg"), IsActive: true})

	w := f.do(http.MethodPut, "/api/v1/hotspots/"+a, gin.H{"parent_hotspot_id": b}, true)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestUnknownProjectIs404(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{
		"/api/v1/hotspots/project/not-a-uuid",
		"/api/v1/hotspots/project/6f1c1f0e-0000-4000-8000-000000000000/scenes",
		"/api/v1/projects/not-a-uuid",
	} {
		w := f.do(http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestUnlockFlow(t *testing.T) {
	f := newFixture(t, nil)
	first := f.db.AddHotspot(domain.Hotspot{ProjectID: f.project, Name: "First", HotspotType: domain.HotspotNormal, UnlockOrder: 0, IsActive: true})
	second := f.db.AddHotspot(domain.Hotspot{ProjectID: f.project, Name: "Second", HotspotType: domain.HotspotNormal, UnlockOrder: 1, RequiresPrevious: true, IsActive: true})

	unlock := func(hotspotID string) *httptest.ResponseRecorder {
		return f.do(http.MethodPost, "/api/v1/progress/unlock", gin.H{
			"projectId": f.project, "hotspotId": hotspotID, "sessionId": session,
		}, false)
	}

	assert.Equal(t, http.StatusForbidden, unlock(second).Code)
	assert.Equal(t, http.StatusOK, unlock(first).Code)
	assert.Equal(t, http.StatusOK, unlock(first).Code, "re-unlocking succeeds")
	assert.Equal(t, http.StatusOK, unlock(second).Code)
	assert.Equal(t, http.StatusNotFound, unlock("6f1c1f0e-0000-4000-8000-000000000000").Code)
	assert.Equal(t, http.StatusNotFound, unlock("nope").Code)

	w := f.do(http.MethodGet, "/api/v1/progress/"+f.project+"/"+session, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Progress domain.Progress `json:"progress"`
	}
	decode(t, w, &got)
	assert.Equal(t, domain.ProgressStats{Total: 2, Unlocked: 2, Percentage: 100}, got.Progress.Stats)

	w = f.do(http.MethodDelete, "/api/v1/progress/"+f.project+"/"+session, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"deleted":2}`, w.Body.String())
}

func TestUnlockValidatesSession(t *testing.T) {
	f := newFixture(t, nil)

	for _, sid := range []string{"short", "has spaces in it!", strings.Repeat("x", 101)} {
		w := f.do(http.MethodPost, "/api/v1/progress/unlock", gin.H{
			"projectId": f.project, "hotspotId": f.project, "sessionId": sid,
		}, false)
		assert.Equal(t, http.StatusBadRequest, w.Code, sid)
	}

	w := f.do(http.MethodGet, "/api/v1/progress/"+f.project+"/short", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/v1/projects", gin.H{
		"name": "gallery", "title": "Gallery", "main_image_url": "https://cdn.example.com/g.jpg",
		"password": "open-sesame",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Project domain.Project `json:"project"`
	}
	decode(t, w, &created)
	id := created.Project.ID
	assert.True(t, created.Project.HasPassword)

	w = f.do(http.MethodPost, "/api/v1/projects", gin.H{
		"name": "gallery", "title": "Again", "main_image_url": "https://cdn.example.com/g.jpg",
	}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/v1/projects/"+id+"/verify-password", gin.H{"password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = f.do(http.MethodPost, "/api/v1/projects/"+id+"/verify-password", gin.H{"password": "open-sesame"}, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/projects/"+id+"?sessionId="+session, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	logs := f.db.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, session, logs[0].UserSession)

	w = f.do(http.MethodGet, "/api/v1/projects/"+id+"?sessionId=bad", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/projects/"+id, gin.H{"password": ""}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &created)
	assert.False(t, created.Project.HasPassword)

	w = f.do(http.MethodGet, "/api/v1/projects", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Projects []domain.Project `json:"projects"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Projects, 2)

	w = f.do(http.MethodDelete, "/api/v1/projects/"+id, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/v1/projects/"+id, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type chanSubscriber struct {
	ch chan domain.UnlockEvent
}

func (s chanSubscriber) Subscribe(context.Context, string) (<-chan domain.UnlockEvent, error) {
	return s.ch, nil
}

func TestStreamUnlocks(t *testing.T) {
	ch := make(chan domain.UnlockEvent, 1)
	f := newFixture(t, chanSubscriber{ch: ch})

	ch <- domain.UnlockEvent{ProjectID: f.project, HotspotID: "h1", SessionID: session}
	close(ch)

	w := f.do(http.MethodGet, "/api/v1/progress/"+f.project+"/events", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event: unlock\n")
	assert.Contains(t, w.Body.String(), `"hotspot_id":"h1"`)
}

func TestStreamUnlocksDisabled(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(http.MethodGet, "/api/v1/progress/"+f.project+"/events", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
