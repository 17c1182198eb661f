package repo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"heartbeat-insights/internal/core/database"
	"heartbeat-insights/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestUserRepoGorm(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(newTestDB(t))

	u := &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, r.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	t.Run("duplicate_email", func(t *testing.T) {
		err := r.Create(ctx, &domain.User{Name: "Other", Email: "ana@example.com", PasswordHash: "h", Role: domain.RoleUser})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("find", func(t *testing.T) {
		got, err := r.FindByEmail(ctx, " ANA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = r.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		u.Role = domain.RoleAdmin
		u.UpdatedAt = time.Now()
		require.NoError(t, r.Update(ctx, u))
		got, err := r.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, got.Role)

		assert.ErrorIs(t, r.Update(ctx, &domain.User{ID: "missing", Email: "x@y.z"}), domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		v := &domain.User{Name: "Bo", Email: "bo@example.com", PasswordHash: "h", Role: domain.RoleUser}
		require.NoError(t, r.Create(ctx, v))
		require.NoError(t, r.Delete(ctx, v.ID))
		assert.ErrorIs(t, r.Delete(ctx, v.ID), domain.ErrNotFound)

		all, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, u.ID, all[0].ID)
	})
}

func TestDashboardRepoGorm(t *testing.T) {
	ctx := context.Background()
	r := NewDashboardRepo(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	older := &domain.Dashboard{Title: "old", Data: json.RawMessage(`{"chartType":"bar","labels":["a"],"values":[1]}`),
		IsActive: true, CreatedBy: "u1", CreatedAt: base, UpdatedAt: base}
	newer := &domain.Dashboard{Title: "new", CardiovascularData: &domain.CardiovascularData{TotalPatients: 10},
		IsActive: true, CreatedBy: "u1", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	hidden := &domain.Dashboard{Title: "hidden", IsActive: false, CreatedBy: "u2", CreatedAt: base, UpdatedAt: base}
	for _, d := range []*domain.Dashboard{older, newer, hidden} {
		require.NoError(t, r.Create(ctx, d))
	}

	list, err := r.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Title)
	assert.Equal(t, 10, list[0].CardiovascularData.TotalPatients)
	assert.JSONEq(t, string(older.Data), string(list[1].Data))

	older.Title = "renamed"
	require.NoError(t, r.Update(ctx, older))
	got, err := r.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	n, err := r.ReassignOwner(ctx, "u1", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	byIDs, err := r.FindByIDs(ctx, []string{older.ID, hidden.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	require.NoError(t, r.Delete(ctx, newer.ID))
	_, err = r.FindByID(ctx, newer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, newer.ID), domain.ErrNotFound)
}

func TestInsightRepoGorm(t *testing.T) {
	ctx := context.Background()
	r := NewInsightRepo(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	mk := func(title string, p domain.Priority, at time.Time) *domain.Insight {
		in := &domain.Insight{Title: title, Content: "c", Type: domain.InsightInfo, Priority: p,
			CreatedBy: "u1", IsActive: true, CreatedAt: at, UpdatedAt: at}
		require.NoError(t, r.Create(ctx, in))
		return in
	}
	low := mk("low", domain.PriorityLow, base.Add(3*time.Minute))
	critical := mk("critical", domain.PriorityCritical, base)
	mk("high-old", domain.PriorityHigh, base)
	highNew := mk("high-new", domain.PriorityHigh, base.Add(time.Minute))
	deadline := base.Add(24 * time.Hour)
	highNew.ActionItems = []domain.ActionItem{{Action: "walk", Deadline: &deadline, Category: domain.CategoryPrevention}}
	highNew.MedicalData = &domain.MedicalData{Condition: domain.ConditionStroke, Percentage: 12.5}
	require.NoError(t, r.Update(ctx, highNew))

	list, err := r.ListActive(ctx)
	require.NoError(t, err)
	titles := make([]string, 0, len(list))
	for _, in := range list {
		titles = append(titles, in.Title)
	}
	assert.Equal(t, []string{"critical", "high-new", "high-old", "low"}, titles)
	require.Len(t, list[1].ActionItems, 1)
	assert.Equal(t, "walk", list[1].ActionItems[0].Action)
	assert.Equal(t, 12.5, list[1].MedicalData.Percentage)

	require.NoError(t, r.Deactivate(ctx, low.ID))
	require.NoError(t, r.Deactivate(ctx, low.ID))
	list, err = r.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	stored, err := r.FindByID(ctx, low.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.ErrorIs(t, r.Deactivate(ctx, "missing"), domain.ErrNotFound)

	n, err := r.ReassignOwner(ctx, "u1", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	got, err := r.FindByID(ctx, critical.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.CreatedBy)
}
