package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/food-share-service/internal/dao"
	"github.com/haierkeys/food-share-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturePublisher 捕获发布的事件供断言
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *capturePublisher) Publish(events ...domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *capturePublisher) all() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// testClock 可控时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestStore 内存 sqlite 存储
// 单连接池确保同一内存库在整个测试期间存活
func newTestStore(t *testing.T) *dao.Dao {
	t.Helper()

	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	d := dao.New(db, zap.NewNop())
	require.NoError(t, d.AutoMigrate())

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return d
}

type testEnv struct {
	store     *dao.Dao
	clock     *testClock
	publisher *capturePublisher
	lifecycle LifecycleService
	posts     PostService
	sweeper   SweepService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     newTestStore(t),
		clock:     newTestClock(),
		publisher: &capturePublisher{},
	}
	opts := Options{
		Store:     env.store,
		Publisher: env.publisher,
		Logger:    zap.NewNop(),
		Now:       env.clock.Now,
	}
	env.lifecycle = NewLifecycleService(opts)
	env.posts = NewPostService(opts)
	env.sweeper = NewSweepService(opts, 200)
	return env
}

// seedPost 直接写入一条帖子
func (env *testEnv) seedPost(t *testing.T, ownerUID int64, status domain.PostStatus, bestBefore *time.Time) *domain.Post {
	t.Helper()
	post, err := env.store.Posts().Create(context.Background(), &domain.Post{
		OwnerUID:   ownerUID,
		Title:      "surplus bread",
		Content:    "half a loaf, baked today",
		Status:     status,
		BestBefore: bestBefore,
	})
	require.NoError(t, err)
	return post
}

// seedClaim 直接写入一条领取请求
func (env *testEnv) seedClaim(t *testing.T, postID, requesterUID int64, status domain.ClaimStatus) *domain.Claim {
	t.Helper()
	claim, err := env.store.Claims().Create(context.Background(), &domain.Claim{
		PostID:       postID,
		RequesterUID: requesterUID,
		Status:       status,
		Message:      "can pick up tonight",
	})
	require.NoError(t, err)
	return claim
}

func (env *testEnv) getPost(t *testing.T, id int64) *domain.Post {
	t.Helper()
	post, err := env.store.Posts().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, post)
	return post
}

func (env *testEnv) getClaim(t *testing.T, id int64) *domain.Claim {
	t.Helper()
	claim, err := env.store.Claims().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, claim)
	return claim
}

func timePtr(t time.Time) *time.Time {
	return &t
}
