package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStatsCache(t *testing.T) (*cache.StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewStatsCache(rdb, time.Minute, zerolog.Nop()), mr
}

func TestStats_CachedDashboardSeesLaterWrites(t *testing.T) {
	ctx := context.Background()
	statsCache, mr := newRedisStatsCache(t)
	f := newCachedFixture(t, nil, statsCache)
	f.addStudent(t, "Alice", "SE001", "SE")

	d, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalStudents)
	assert.Contains(t, mr.Keys(), "faculty:stats:v1:dashboard:"+fixedToday, "first read fills the cache")

	d, err = f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalStudents)

	f.addStudent(t, "Bob", "SE002", "SE")
	_, err = f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{
		Date: fixedToday, Year: "SE", Subject: "DS",
		Statuses: map[string]string{"Alice": model.StatusPresent},
	})
	require.NoError(t, err)

	d, err = f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalStudents)
	assert.Equal(t, 50.0, d.AttendancePercentage)
}

func TestStats_CachedSyllabusProgressSeesLaterWrites(t *testing.T) {
	ctx := context.Background()
	statsCache, _ := newRedisStatsCache(t)
	f := newCachedFixture(t, []model.CohortSyllabus{{
		Year: "SE",
		Subjects: []model.SubjectTopics{
			{Subject: "Data Structures", Topics: []string{"Arrays", "Linked Lists", "Stacks"}},
		},
	}}, statsCache)

	_, err := f.syllabus.Reseed(ctx)
	require.NoError(t, err)

	progress, err := f.stats.SyllabusProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SyllabusProgress{Completed: 0, Total: 3, Percentage: 0}, *progress)

	topics, err := f.syllabus.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	_, err = f.syllabus.SetCompleted(ctx, topics[0].ID, true)
	require.NoError(t, err)

	progress, err = f.stats.SyllabusProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SyllabusProgress{Completed: 1, Total: 3, Percentage: 33.3}, *progress)

	groups, err := f.stats.SyllabusGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Completed)
}
