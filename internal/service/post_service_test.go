package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/dto"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	best := env.clock.Now().Add(24 * time.Hour).Format(timex.TimeLayout)
	post, err := env.posts.Offer(ctx, ownerUID, &dto.PostCreateRequest{
		Title:      "leftover vegetables",
		Content:    "from today's market run",
		PickupNote: "ring the bell",
		BestBefore: best,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PostStatusAvailable), post.Status)
	assert.Equal(t, ownerUID, post.OwnerUID)
	assert.Equal(t, best, post.BestBefore)

	events := env.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EntityPost, events[0].Entity)
	assert.Equal(t, post.ID, events[0].ID)
}

func TestOfferPastDeadline(t *testing.T) {
	env := newTestEnv(t)

	past := env.clock.Now().Add(-time.Hour).Format(timex.TimeLayout)
	_, err := env.posts.Offer(context.Background(), ownerUID, &dto.PostCreateRequest{
		Title:      "old bread",
		BestBefore: past,
	})
	assert.ErrorIs(t, err, code.ErrorInvalidParams)
}

func TestGetLazySweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := env.seedPost(t, ownerUID, domain.PostStatusRequested,
		timePtr(env.clock.Now().Add(-time.Hour)))
	claim := env.seedClaim(t, post.ID, requesterUID, domain.ClaimStatusPending)

	// 读路径发现过保质期的帖子先置过期再返回
	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PostStatusExpired), got.Status)
	assert.Equal(t, domain.ClaimStatusCancelled, env.getClaim(t, claim.ID).Status)

	_, err = env.posts.Get(ctx, 9999)
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
}

func TestListDefaultsToAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	env.seedPost(t, ownerUID, domain.PostStatusCollected, nil)

	posts, count, err := env.posts.List(ctx, &dto.PostListRequest{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, posts, 2)

	posts, count, err = env.posts.List(ctx, &dto.PostListRequest{Status: "collected"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, posts, 1)
}

func TestListLazySweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale := env.seedPost(t, ownerUID, domain.PostStatusAvailable,
		timePtr(env.clock.Now().Add(-time.Minute)))
	claim := env.seedClaim(t, stale.ID, requesterUID, domain.ClaimStatusPending)
	fresh := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	// 过保质期的帖子不会再以 available 出现在列表里
	posts, count, err := env.posts.List(ctx, &dto.PostListRequest{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, posts, 1)
	assert.Equal(t, fresh.ID, posts[0].ID)

	assert.Equal(t, domain.PostStatusExpired, env.getPost(t, stale.ID).Status)
	assert.Equal(t, domain.ClaimStatusCancelled, env.getClaim(t, claim.ID).Status)

	// 发布者视角同样先过期再返回
	mine, _, err := env.posts.ListByOwner(ctx, ownerUID, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		if p.ID == stale.ID {
			assert.Equal(t, string(domain.PostStatusExpired), p.Status)
		}
	}
}

func TestListByOwnerPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	}
	env.seedPost(t, otherUID, domain.PostStatusAvailable, nil)

	posts, count, err := env.posts.ListByOwner(ctx, ownerUID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Len(t, posts, 3)

	posts, _, err = env.posts.ListByOwner(ctx, ownerUID, 2, 3)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestListClaims(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	env.seedClaim(t, post.ID, requesterUID, domain.ClaimStatusPending)
	env.seedClaim(t, post.ID, otherUID, domain.ClaimStatusPending)

	t.Run("owner only", func(t *testing.T) {
		_, _, err := env.posts.ListClaims(ctx, requesterUID, post.ID, 1, 10)
		assert.ErrorIs(t, err, code.ErrorNotPostOwner)
	})

	claims, count, err := env.posts.ListClaims(ctx, ownerUID, post.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, claims, 2)
}

func TestListClaimsByRequester(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	second := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
	env.seedClaim(t, first.ID, requesterUID, domain.ClaimStatusPending)
	env.seedClaim(t, second.ID, requesterUID, domain.ClaimStatusCancelled)
	env.seedClaim(t, second.ID, otherUID, domain.ClaimStatusPending)

	claims, count, err := env.posts.ListClaimsByRequester(ctx, requesterUID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, claims, 2)
	for _, c := range claims {
		assert.Equal(t, requesterUID, c.RequesterUID)
	}
}
