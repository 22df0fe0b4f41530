package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	due := env.seedPost(t, ownerUID, domain.PostStatusRequested, timePtr(now.Add(-time.Hour)))
	active := env.seedClaim(t, due.ID, requesterUID, domain.ClaimStatusPending)
	declined := env.seedClaim(t, due.ID, otherUID, domain.ClaimStatusDeclined)

	fresh := env.seedPost(t, ownerUID, domain.PostStatusAvailable, timePtr(now.Add(time.Hour)))
	forever := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	collected := env.seedPost(t, ownerUID, domain.PostStatusCollected, timePtr(now.Add(-time.Hour)))

	result, err := env.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{due.ID}, result.ExpiredPostIDs)
	assert.Equal(t, []int64{active.ID}, result.CancelledClaimIDs)

	assert.Equal(t, domain.PostStatusExpired, env.getPost(t, due.ID).Status)
	assert.Equal(t, domain.ClaimStatusCancelled, env.getClaim(t, active.ID).Status)
	// 已是终态的请求不受级联影响
	assert.Equal(t, domain.ClaimStatusDeclined, env.getClaim(t, declined.ID).Status)

	assert.Equal(t, domain.PostStatusAvailable, env.getPost(t, fresh.ID).Status)
	assert.Equal(t, domain.PostStatusAvailable, env.getPost(t, forever.ID).Status)
	assert.Equal(t, domain.PostStatusCollected, env.getPost(t, collected.ID).Status)
}

func TestSweepIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, timePtr(now.Add(-time.Minute)))

	first, err := env.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []int64{post.ID}, first.ExpiredPostIDs)
	eventsAfterFirst := env.publisher.count()

	// 重复扫描不再产生变更与事件
	second, err := env.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, second.ExpiredPostIDs)
	assert.Empty(t, second.CancelledClaimIDs)
	assert.Equal(t, eventsAfterFirst, env.publisher.count())
}

func TestSweepBatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	sweeper := NewSweepService(Options{
		Store:     env.store,
		Publisher: env.publisher,
		Now:       env.clock.Now,
	}, 2)

	var ids []int64
	for i := 0; i < 5; i++ {
		p := env.seedPost(t, ownerUID, domain.PostStatusAvailable, timePtr(now.Add(-time.Hour)))
		ids = append(ids, p.ID)
	}

	result, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, result.ExpiredPostIDs)

	for _, id := range ids {
		assert.Equal(t, domain.PostStatusExpired, env.getPost(t, id).Status)
	}
}

func TestSweepFutureDeadlineUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, timePtr(now.Add(time.Minute)))

	result, err := env.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, result.ExpiredPostIDs)

	// 到期后再次扫描即过期
	result, err = env.sweeper.Sweep(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []int64{post.ID}, result.ExpiredPostIDs)
}
