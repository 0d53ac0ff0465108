package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type calendarRepoStub struct {
	events    []models.SchoolCalendarEvent
	listCalls int
	window    [2]time.Time
}

func (s *calendarRepoStub) ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error) {
	s.listCalls++
	return s.events, nil
}

func (s *calendarRepoStub) ListBetween(ctx context.Context, from, to time.Time) ([]models.SchoolCalendarEvent, error) {
	s.window = [2]time.Time{from, to}
	return nil, nil
}

func (s *calendarRepoStub) Create(ctx context.Context, event *models.SchoolCalendarEvent) error {
	event.ID = "created"
	s.events = append(s.events, *event)
	return nil
}

func (s *calendarRepoStub) CreateBatch(ctx context.Context, events []models.SchoolCalendarEvent) error {
	s.events = append(s.events, events...)
	return nil
}

func (s *calendarRepoStub) Delete(ctx context.Context, id string) error {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// memoryCache stores JSON payloads the way the Redis repository does.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func newCalendarServiceForTest(t *testing.T, repo *calendarRepoStub) (*CalendarService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)
	return NewCalendarService(repo, cache, nil, nil, CalendarConfig{CacheTTL: time.Minute}), metrics
}

func TestCalendarListAllIsCachedUntilWrite(t *testing.T) {
	repo := &calendarRepoStub{events: []models.SchoolCalendarEvent{{ID: "e1", Date: day(t, "2024-01-15"), Type: models.DayHoliday, Title: "MLK Day"}}}
	svc, metrics := newCalendarServiceForTest(t, repo)
	ctx := context.Background()

	events, hit, err := svc.List(ctx, dto.CalendarEventQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, events, 1)

	events, hit, err = svc.List(ctx, dto.CalendarEventQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "MLK Day", events[0].Title)
	assert.Equal(t, 1, repo.listCalls)
	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.001)

	_, err = svc.Create(ctx, dto.CreateCalendarEventRequest{Date: "2024-02-19", Type: models.DayHoliday, Title: "Presidents Day"})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCalendarListWindow(t *testing.T) {
	repo := &calendarRepoStub{}
	svc, _ := newCalendarServiceForTest(t, repo)
	ctx := context.Background()

	events, _, err := svc.List(ctx, dto.CalendarEventQuery{From: "2024-01-01"})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Equal(t, "2024-01-01", scheduler.DateKey(repo.window[0]))
	assert.Equal(t, "9999-12-31", scheduler.DateKey(repo.window[1]))

	_, _, err = svc.List(ctx, dto.CalendarEventQuery{From: "2024-02-01", To: "2024-01-01"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCalendarCreateValidation(t *testing.T) {
	svc, _ := newCalendarServiceForTest(t, &calendarRepoStub{})
	ctx := context.Background()

	cases := map[string]dto.CreateCalendarEventRequest{
		"unknown type":  {Date: "2024-01-15", Type: "snow", Title: "Snow"},
		"missing title": {Date: "2024-01-15", Type: models.DayHoliday},
		"end before":    {Date: "2024-01-15", EndDate: stringRef("2024-01-14"), Type: models.DayBreak, Title: "Break"},
		"bad clock":     {Date: "2024-01-15", Type: models.DayEarlyDismissal, Title: "Early", ModifiedEndTime: stringRef("1pm")},
		"inverted times": {Date: "2024-01-15", Type: models.DayLateStart, Title: "Late",
			ModifiedStartTime: stringRef("10:00"), ModifiedEndTime: stringRef("09:00")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestCalendarCreateRangeForAllGrades(t *testing.T) {
	repo := &calendarRepoStub{}
	svc, _ := newCalendarServiceForTest(t, repo)

	event, err := svc.Create(context.Background(), dto.CreateCalendarEventRequest{
		Date:          "2024-03-25",
		EndDate:       stringRef("2024-03-29"),
		Type:          models.DayBreak,
		Title:         "Spring Break",
		AffectsGrades: []int64{},
	})
	require.NoError(t, err)
	assert.Nil(t, event.AffectsGrades)
	assert.True(t, event.Affects(5))
	assert.Equal(t, "2024-03-29", scheduler.DateKey(*event.EndDate))
}

func TestCalendarDelete(t *testing.T) {
	repo := &calendarRepoStub{events: []models.SchoolCalendarEvent{{ID: "e1"}}}
	svc, _ := newCalendarServiceForTest(t, repo)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	requireStatus(t, svc.Delete(context.Background(), "e1"), http.StatusNotFound)
}

const districtICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//District//Calendar//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:pd-1\r\n" +
	"DTSTART;VALUE=DATE:20240119\r\n" +
	"DTEND;VALUE=DATE:20240120\r\n" +
	"SUMMARY:Teacher Workday\r\n" +
	"CATEGORIES:PD Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:winter-1\r\n" +
	"DTSTART;VALUE=DATE:20231225\r\n" +
	"DTEND;VALUE=DATE:20240102\r\n" +
	"SUMMARY:Winter Break\r\n" +
	"CATEGORIES:break\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:assembly-1\r\n" +
	"DTSTART:20240110T150000Z\r\n" +
	"DTEND:20240110T160000Z\r\n" +
	"SUMMARY:Assembly\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestCalendarImportICS(t *testing.T) {
	repo := &calendarRepoStub{}
	svc, _ := newCalendarServiceForTest(t, repo)

	res, err := svc.ImportICS(context.Background(), strings.NewReader(districtICS))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, repo.events, 2)

	workday := repo.events[0]
	assert.Equal(t, models.DayPD, workday.Type)
	assert.Equal(t, "Teacher Workday", workday.Title)
	assert.Nil(t, workday.EndDate)

	winter := repo.events[1]
	assert.Equal(t, models.DayBreak, winter.Type)
	require.NotNil(t, winter.EndDate)
	assert.Equal(t, "2024-01-01", scheduler.DateKey(*winter.EndDate))
}

func TestCalendarImportICSLimits(t *testing.T) {
	repo := &calendarRepoStub{}
	svc := NewCalendarService(repo, nil, nil, nil, CalendarConfig{ICSMaxBytes: 64})

	_, err := svc.ImportICS(context.Background(), strings.NewReader(districtICS))
	requireStatus(t, err, http.StatusRequestEntityTooLarge)
	assert.Empty(t, repo.events)
}
