package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

var hotspotCols = []string{
	"id", "project_id", "parent_hotspot_id", "name", "description",
	"pitch", "yaw", "hotspot_type", "icon_type", "target_image_url",
	"unlock_order", "requires_previous", "is_active", "created_at", "updated_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestHotspotRepository_ListActiveByProject(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(hotspotCols).
		AddRow("h1", "p1", nil, "Lobby", "", 0.0, 10.0, "door", "door_1", "https://img/lobby.jpg", 0, false, true, now, now).
		AddRow("h2", "p1", "h1", "Desk", "info desk", 5.0, 20.0, "info", "normal_1", nil, 1, true, true, now, now)

	mock.ExpectQuery(`SELECT .+ FROM hotspots WHERE project_id = `).
		WithArgs("p1").
		WillReturnRows(rows)

	out, err := repo.ListActiveByProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Nil(t, out[0].ParentHotspotID)
	assert.Equal(t, "https://img/lobby.jpg", out[0].Target())
	assert.Equal(t, domain.KindNavigational, out[0].Kind())

	assert.Equal(t, "h1", out[1].ParentID())
	assert.Equal(t, domain.KindMarker, out[1].Kind())
	assert.Equal(t, domain.HotspotInfo, out[1].HotspotType)
	assert.True(t, out[1].RequiresPrevious)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_GetActiveNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM hotspots WHERE id = `).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActive(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)
	now := time.Now()

	h := &domain.Hotspot{
		ProjectID:   "p1",
		Name:        "Lobby",
		Pitch:       1,
		Yaw:         2,
		HotspotType: domain.HotspotDoor,
		IconType:    "door_2",
	}

	mock.ExpectQuery(`INSERT INTO hotspots`).
		WithArgs("p1", nil, "Lobby", "", 1.0, 2.0, domain.HotspotDoor, "door_2", nil, 0, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).
			AddRow("new-id", true, now, now))

	require.NoError(t, repo.Create(context.Background(), h))
	assert.Equal(t, "new-id", h.ID)
	assert.True(t, h.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_CreateManyRemapsParents(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)
	now := time.Now()
	parent := "draft-a"

	points := []domain.Hotspot{
		{ID: "draft-a", ProjectID: "p1", Name: "A", HotspotType: domain.HotspotNormal, IconType: "normal_1", TargetImageURL: domain.StringPtr("a.jpg")},
		{ID: "draft-b", ProjectID: "p1", Name: "B", HotspotType: domain.HotspotNormal, IconType: "normal_1", ParentHotspotID: &parent},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO hotspots`).
		WithArgs("p1", nil, "A", "", 0.0, 0.0, domain.HotspotNormal, "normal_1", "a.jpg", 0, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).AddRow("db-a", true, now, now))
	mock.ExpectQuery(`INSERT INTO hotspots`).
		WithArgs("p1", "db-a", "B", "", 0.0, 0.0, domain.HotspotNormal, "normal_1", nil, 0, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).AddRow("db-b", true, now, now))
	mock.ExpectCommit()

	out, err := repo.CreateMany(context.Background(), points)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "db-a", out[0].ID)
	assert.Equal(t, "db-b", out[1].ID)
	assert.Equal(t, "db-a", out[1].ParentID())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_CreateManyRejectsUnorderedParents(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)
	parent := "later"

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := repo.CreateMany(context.Background(), []domain.Hotspot{
		{ID: "child", ProjectID: "p1", Name: "C", ParentHotspotID: &parent},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotspotRepository_SaveAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotspotRepository(db)
	now := time.Now()

	h := &domain.Hotspot{ID: "h1", Name: "Renamed", HotspotType: domain.HotspotNormal, IconType: "normal_1"}

	mock.ExpectQuery(`UPDATE hotspots SET parent_hotspot_id`).
		WithArgs("h1", nil, "Renamed", "", 0.0, 0.0, domain.HotspotNormal, "normal_1", nil, 0, false).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	require.NoError(t, repo.Save(context.Background(), h))
	assert.Equal(t, now, h.UpdatedAt)

	mock.ExpectQuery(`UPDATE hotspots SET parent_hotspot_id`).
		WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.Save(context.Background(), h), domain.ErrNotFound)

	mock.ExpectExec(`UPDATE hotspots SET is_active = FALSE`).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), "h1"))

	mock.ExpectExec(`UPDATE hotspots SET is_active = FALSE`).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "h1"), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

var projectCols = []string{
	"id", "name", "title", "description", "main_image_url", "logo_url",
	"is_public", "unlock_order", "has_password", "created_by",
	"is_active", "created_at", "updated_at", "total_hotspots", "door_hotspots",
}

func TestProjectRepository_ListPublic(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM projects p LEFT JOIN hotspots h .+ WHERE p.is_public = TRUE`).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "office", "Office", "", "https://img/office.jpg", nil, true, 0, true, nil, true, now, now, 4, 1))

	out, err := repo.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].TotalHotspots)
	assert.Equal(t, 1, out[0].DoorHotspots)
	assert.True(t, out[0].HasPassword)
	assert.Nil(t, out[0].LogoURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`INSERT INTO projects`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), domain.NewProject{Name: "office", Title: "Office", MainImageURL: "https://img"}, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)
	title := "New title"
	noPassword := ""

	t.Run("no fields", func(t *testing.T) {
		err := repo.Update(context.Background(), "p1", domain.ProjectUpdate{})
		assert.ErrorIs(t, err, domain.ErrNoFields)
	})

	t.Run("partial update clears password", func(t *testing.T) {
		mock.ExpectExec(`UPDATE projects SET title = .+, password_hash = .+, updated_at = NOW`).
			WithArgs("p1", "New title", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), "p1", domain.ProjectUpdate{Title: &title, PasswordHash: &noPassword})
		require.NoError(t, err)
	})

	t.Run("missing project", func(t *testing.T) {
		mock.ExpectExec(`UPDATE projects SET title`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), "p1", domain.ProjectUpdate{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_PasswordHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`SELECT password_hash FROM projects`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(nil))
	hash, err := repo.PasswordHash(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, hash)

	mock.ExpectQuery(`SELECT password_hash FROM projects`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.PasswordHash(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("count prior unlocks", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT.+FROM user_progress up JOIN hotspots h`).
			WithArgs("session-123456", "p1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		n, err := repo.CountPriorUnlocks(ctx, "session-123456", "p1", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("insert is idempotent", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO user_progress .+ ON CONFLICT .+ DO NOTHING`).
			WithArgs("session-123456", "p1", "h1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO user_progress`).
			WithArgs("session-123456", "p1", "h1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		inserted, err := repo.InsertProgress(ctx, "session-123456", "p1", "h1")
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.InsertProgress(ctx, "session-123456", "p1", "h1")
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("list progress", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM hotspots h LEFT JOIN user_progress up`).
			WithArgs("session-123456", "p1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "hotspot_type", "unlock_order", "requires_previous", "unlocked_at"}).
				AddRow("h1", "A", "", "normal", 0, false, now).
				AddRow("h2", "B", "", "door", 1, true, nil))

		out, err := repo.ListProgress(ctx, "session-123456", "p1")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.True(t, out[0].Unlocked)
		require.NotNil(t, out[0].UnlockedAt)
		assert.False(t, out[1].Unlocked)
		assert.Nil(t, out[1].UnlockedAt)
	})

	t.Run("find active hotspot", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM hotspots WHERE id = .+ AND project_id = `).
			WithArgs("h9", "p1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindActiveHotspot(ctx, "p1", "h9")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete progress", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM user_progress`).
			WithArgs("p1", "session-123456").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteProgress(ctx, "session-123456", "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessLogRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccessLogRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`INSERT INTO access_logs`).
		WithArgs("p1", "session-123456", "10.0.0.1", "curl").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Record(ctx, domain.AccessLog{
		ProjectID: "p1", UserSession: "session-123456", IPAddress: "10.0.0.1", UserAgent: "curl",
	}))

	mock.ExpectQuery(`SELECT COUNT.+FROM access_logs`).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT al.id`).
		WithArgs(nil, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "user_session", "ip_address", "user_agent", "accessed_at"}).
			AddRow(int64(1), "p1", "office", "session-123456", nil, "curl", now))

	logs, total, err := repo.List(ctx, "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "office", logs[0].ProjectName)
	assert.Empty(t, logs[0].IPAddress)

	cutoff := now.Add(-90 * 24 * time.Hour)
	mock.ExpectExec(`DELETE FROM access_logs WHERE accessed_at`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))
	n, err := repo.PurgeOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	mock.ExpectExec(`DELETE FROM access_logs`).WillReturnError(errors.New("boom"))
	_, err = repo.PurgeOlderThan(ctx, cutoff)
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
