// Package tracker coordinates the entity cache and the backend: queries are
// gated on a valid credential and served through the cache, while create and
// delete of logged entries apply optimistic edits that roll back on failure
// and always invalidate on settle.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snapcal/snapcal-cli/internal/cache"
	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/session"
)

// API is the slice of the backend client the tracker depends on.
type API interface {
	AddMeal(ctx context.Context, credential string, in model.MealCreate) (model.MealEntry, error)
	DeleteMeal(ctx context.Context, credential, mealID string) error
	TodayLog(ctx context.Context, credential string) (model.DailyLog, error)
	LogByDate(ctx context.Context, credential, date string) (model.DailyLog, error)
	History(ctx context.Context, credential string, days int) ([]model.DailySummary, error)
	RangeStats(ctx context.Context, credential, startDate, endDate string) (model.DateRangeStats, error)
	FoodStats(ctx context.Context, credential string, days, limit int) ([]model.FoodStat, error)
	ActivityCatalog(ctx context.Context) (model.ActivityCatalog, error)
	AddActivity(ctx context.Context, credential string, in model.ActivityCreate) (model.ActivityEntry, error)
	AddCustomActivity(ctx context.Context, credential string, in model.CustomActivityCreate) (model.ActivityEntry, error)
	DeleteActivity(ctx context.Context, credential, activityID string) error
	TodayActivities(ctx context.Context, credential string) ([]model.ActivityEntry, error)
	SubmitFeedback(ctx context.Context, credential string, in model.FeedbackCreate) (model.Feedback, error)
	MyFeedback(ctx context.Context, credential string) ([]model.Feedback, error)
}

// CredentialSource yields the current credential and user; the tracker
// re-reads them at every use instead of capturing a copy.
type CredentialSource interface {
	Credential() string
	User() *model.User
}

// Clock and IDGenerator keep mutation bookkeeping deterministic in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Staleness budgets per resource class.
const (
	todayTTL   = 2 * time.Minute
	dayTTL     = 5 * time.Minute
	historyTTL = 5 * time.Minute
	statsTTL   = 10 * time.Minute
)

const (
	mealsPrefix      cache.Key = "meals"
	activitiesPrefix cache.Key = "activities"
	feedbackPrefix   cache.Key = "feedback"

	todayLogKey        cache.Key = "meals/today"
	todayActivitiesKey cache.Key = "activities/today"
	catalogKey         cache.Key = "activities/catalog"
	myFeedbackKey      cache.Key = "feedback/my"
)

func dayLogKey(date string) cache.Key {
	return cache.Key("meals/date/" + date)
}

func historyKey(days int) cache.Key {
	return cache.Key(fmt.Sprintf("meals/history/%d", days))
}

func rangeStatsKey(startDate, endDate string) cache.Key {
	return cache.Key("meals/range/" + startDate + "/" + endDate)
}

func foodStatsKey(days, limit int) cache.Key {
	return cache.Key(fmt.Sprintf("meals/foods/%d/%d", days, limit))
}

const tempIDPrefix = "temp-"

// IsProvisionalID reports whether id is a client-assigned placeholder that
// the server has not confirmed yet.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// keyLocks serializes mutations per cache key, so a second mutation against
// the same entry cannot snapshot mid-flight state of the first.
type keyLocks struct {
	mu sync.Mutex
	m  map[cache.Key]*sync.Mutex
}

func (l *keyLocks) lock(key cache.Key) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[cache.Key]*sync.Mutex)
	}
	km, ok := l.m[key]
	if !ok {
		km = &sync.Mutex{}
		l.m[key] = km
	}
	l.mu.Unlock()
	km.Lock()
	return km.Unlock
}

type Tracker struct {
	api     API
	session CredentialSource
	cache   *cache.Store
	log     zerolog.Logger
	clock   Clock
	ids     IDGenerator
	locks   keyLocks
}

func New(apiClient API, creds CredentialSource, store *cache.Store, log zerolog.Logger) *Tracker {
	return &Tracker{
		api:     apiClient,
		session: creds,
		cache:   store,
		log:     log,
		clock:   RealClock{},
		ids:     UUIDGenerator{},
	}
}

// WithClock and WithIDs swap the time/id sources, for tests.
func (t *Tracker) WithClock(c Clock) *Tracker {
	t.clock = c
	return t
}

func (t *Tracker) WithIDs(g IDGenerator) *Tracker {
	t.ids = g
	return t
}

func (t *Tracker) tempID() string {
	return tempIDPrefix + t.ids.New()
}

func (t *Tracker) today() string {
	return t.clock.Now().Format("2006-01-02")
}

func (t *Tracker) credential() (string, error) {
	cred := t.session.Credential()
	if cred == "" {
		return "", session.ErrNotAuthenticated
	}
	return cred, nil
}

// rollback restores the exact pre-mutation snapshot: a full overwrite when
// the entry existed, removal when it did not.
func (t *Tracker) rollback(key cache.Key, prev any, had bool) {
	if had {
		t.cache.Put(key, prev)
	} else {
		t.cache.Drop(key)
	}
}
