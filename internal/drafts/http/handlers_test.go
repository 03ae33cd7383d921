package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/internal/drafts"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/memstore"
	"github.com/ambi360/ambi360-backend/internal/tours/service"
)

const rootImage = "https://cdn.example.com/root.jpg"

func setup(t *testing.T) (*gin.Engine, *memstore.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memstore.New()
	projectID := db.AddProject(domain.Project{Name: "lobby", MainImageURL: rootImage, IsActive: true})
	hotspots := service.NewHotspotService(db.Hotspots(), db.Projects(), nil)

	r := gin.New()
	New(drafts.NewService(drafts.NewMemoryStore(time.Hour), hotspots)).Register(r.Group("/drafts"))
	return r, db, projectID
}

func call(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type draftResp struct {
	Draft   drafts.View      `json:"draft"`
	Point   domain.Hotspot   `json:"point"`
	Removed int              `json:"removed"`
	Created []domain.Hotspot `json:"hotspots"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) draftResp {
	t.Helper()
	var out draftResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestDraftEditorFlow(t *testing.T) {
	r, db, projectID := setup(t)

	w := call(r, http.MethodPost, "/drafts", gin.H{"projectId": projectID, "rootImage": rootImage})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w).Draft.ID
	base := "/drafts/" + id

	w = call(r, http.MethodPost, base+"/points", gin.H{"pitch": 0, "yaw": 90})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	door := decode(t, w).Point

	w = call(r, http.MethodPost, base+"/enter/"+door.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "markers cannot be entered")

	w = call(r, http.MethodPut, base+"/points/"+door.ID, gin.H{"target_image": "https://cdn.example.com/hall.jpg", "label": "Hall"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodPost, base+"/enter/"+door.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, door.ID, decode(t, w).Draft.Cursor)

	w = call(r, http.MethodPost, base+"/points", gin.H{"pitch": 5, "yaw": 270})
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodGet, base+"/scenes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scene_"+door.ID)

	w = call(r, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode(t, w).Draft.Cursor)

	w = call(r, http.MethodGet, "/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = call(r, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w).Created, 2)

	stored := db.Projects()
	p, err := stored.GetActive(t.Context(), projectID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalHotspots)

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, base, nil).Code)
}

func TestDraftPointRemoval(t *testing.T) {
	r, _, _ := setup(t)

	w := call(r, http.MethodPost, "/drafts", gin.H{"rootImage": rootImage})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/drafts/" + decode(t, w).Draft.ID

	var first string
	for i, yaw := range []int{10, 20, 30} {
		w = call(r, http.MethodPost, base+"/points", gin.H{"pitch": 0, "yaw": yaw})
		require.Equal(t, http.StatusCreated, w.Code)
		if i == 0 {
			first = decode(t, w).Point.ID
		}
	}

	w = call(r, http.MethodDelete, base+"/points/"+first, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode(t, w).Removed)

	w = call(r, http.MethodDelete, base+"/points", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode(t, w).Removed)

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodDelete, base+"/points/"+first, nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, base+"/points", gin.H{"yaw": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, base+"/publish", nil).Code)

	assert.Equal(t, http.StatusOK, call(r, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodDelete, base, nil).Code)
}

func TestCreateDraftRequiresRootImage(t *testing.T) {
	r, _, _ := setup(t)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/drafts", gin.H{}).Code)
}
