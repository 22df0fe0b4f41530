package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerUID     = int64(1)
	requesterUID = int64(2)
	otherUID     = int64(3)
)

func TestCreateClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "still fresh?")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusPending, claim.Status)
	assert.Equal(t, post.ID, claim.PostID)

	// 首条请求把帖子推进到 requested
	assert.Equal(t, domain.PostStatusRequested, env.getPost(t, post.ID).Status)

	events := env.publisher.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EntityClaim, events[0].Entity)
	assert.Equal(t, string(domain.ClaimStatusPending), events[0].Status)
	assert.Equal(t, domain.EntityPost, events[1].Entity)
	assert.Equal(t, string(domain.PostStatusRequested), events[1].Status)

	// 第二个请求者的请求不再触发帖子事件
	before := env.publisher.count()
	_, err = env.lifecycle.CreateClaim(ctx, otherUID, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, before+1, env.publisher.count())
}

func TestCreateClaimRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("post not found", func(t *testing.T) {
		_, err := env.lifecycle.CreateClaim(ctx, requesterUID, 9999, "")
		assert.ErrorIs(t, err, code.ErrorPostNotFound)
	})

	t.Run("own post", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
		_, err := env.lifecycle.CreateClaim(ctx, ownerUID, post.ID, "")
		assert.ErrorIs(t, err, code.ErrorClaimOwnPost)
	})

	t.Run("duplicate active claim", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
		_, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		require.NoError(t, err)
		_, err = env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		assert.ErrorIs(t, err, code.ErrorDuplicateClaim)
	})

	t.Run("reserved post", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusReserved, nil)
		_, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		assert.ErrorIs(t, err, code.ErrorPostNotClaimable)
	})

	t.Run("collected post", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusCollected, nil)
		_, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		assert.ErrorIs(t, err, code.ErrorPostNotClaimable)
	})

	t.Run("terminal claim does not block a new one", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
		claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		require.NoError(t, err)
		_, err = env.lifecycle.CancelClaim(ctx, requesterUID, claim.ID)
		require.NoError(t, err)

		_, err = env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "second try")
		assert.NoError(t, err)
	})
}

func TestCreateClaimLazySweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := env.seedPost(t, ownerUID, domain.PostStatusRequested,
		timePtr(env.clock.Now().Add(-time.Hour)))
	existing := env.seedClaim(t, post.ID, otherUID, domain.ClaimStatusPending)

	// 过保质期的帖子在请求时被惰性置为过期，级联取消已有请求
	_, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	assert.ErrorIs(t, err, code.ErrorPostExpired)

	assert.Equal(t, domain.PostStatusExpired, env.getPost(t, post.ID).Status)
	assert.Equal(t, domain.ClaimStatusCancelled, env.getClaim(t, existing.ID).Status)

	// 过期即使在操作失败时也已提交
	_, err = env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	assert.ErrorIs(t, err, code.ErrorPostExpired)
}

func TestAcceptClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	first, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	second, err := env.lifecycle.CreateClaim(ctx, otherUID, post.ID, "")
	require.NoError(t, err)

	accepted, err := env.lifecycle.AcceptClaim(ctx, ownerUID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusAccepted, accepted.Status)

	// 其余待处理请求被级联拒绝，帖子进入 reserved
	assert.Equal(t, domain.ClaimStatusDeclined, env.getClaim(t, second.ID).Status)
	assert.Equal(t, domain.PostStatusReserved, env.getPost(t, post.ID).Status)

	// 帖子已被占住，落败的请求不能再被接受
	_, err = env.lifecycle.AcceptClaim(ctx, ownerUID, second.ID)
	assert.ErrorIs(t, err, code.ErrorPostAlreadyReserved)
}

func TestAcceptClaimRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	first, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	second, err := env.lifecycle.CreateClaim(ctx, otherUID, post.ID, "")
	require.NoError(t, err)

	// 两个接受并发竞争同一帖子，恰好一方胜出
	errs := make(chan error, 2)
	for _, id := range []int64{first.ID, second.ID} {
		id := id
		go func() {
			_, err := env.lifecycle.AcceptClaim(ctx, ownerUID, id)
			errs <- err
		}()
	}

	var won, lost int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			won++
		case errors.Is(err, code.ErrorPostAlreadyReserved):
			lost++
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	assert.Equal(t, domain.PostStatusReserved, env.getPost(t, post.ID).Status)
	statuses := []domain.ClaimStatus{
		env.getClaim(t, first.ID).Status,
		env.getClaim(t, second.ID).Status,
	}
	assert.ElementsMatch(t,
		[]domain.ClaimStatus{domain.ClaimStatusAccepted, domain.ClaimStatusDeclined}, statuses)
}

func TestAcceptClaimGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("not post owner", func(t *testing.T) {
		post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)
		claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
		require.NoError(t, err)

		_, err = env.lifecycle.AcceptClaim(ctx, otherUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorNotPostOwner)
	})

	t.Run("claim not found", func(t *testing.T) {
		_, err := env.lifecycle.AcceptClaim(ctx, ownerUID, 9999)
		assert.ErrorIs(t, err, code.ErrorClaimNotFound)
	})

	t.Run("post already reserved leaves claim untouched", func(t *testing.T) {
		// 帖子已被并发接受占住时，后来的接受不留任何局部改动
		post := env.seedPost(t, ownerUID, domain.PostStatusReserved, nil)
		claim := env.seedClaim(t, post.ID, requesterUID, domain.ClaimStatusPending)

		_, err := env.lifecycle.AcceptClaim(ctx, ownerUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorPostAlreadyReserved)
		assert.Equal(t, domain.ClaimStatusPending, env.getClaim(t, claim.ID).Status)
	})
}

func TestDeclineClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)

	declined, err := env.lifecycle.DeclineClaim(ctx, ownerUID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusDeclined, declined.Status)

	// 最后一条有效请求被拒绝后帖子回到 available
	assert.Equal(t, domain.PostStatusAvailable, env.getPost(t, post.ID).Status)

	_, err = env.lifecycle.DeclineClaim(ctx, ownerUID, claim.ID)
	assert.ErrorIs(t, err, code.ErrorClaimNotPending)
}

func TestDeclineClaimKeepsRequested(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	first, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	_, err = env.lifecycle.CreateClaim(ctx, otherUID, post.ID, "")
	require.NoError(t, err)

	_, err = env.lifecycle.DeclineClaim(ctx, ownerUID, first.ID)
	require.NoError(t, err)

	// 还有待处理请求，帖子维持 requested
	assert.Equal(t, domain.PostStatusRequested, env.getPost(t, post.ID).Status)
}

func TestCompleteClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	_, err = env.lifecycle.AcceptClaim(ctx, ownerUID, claim.ID)
	require.NoError(t, err)

	done, err := env.lifecycle.CompleteClaim(ctx, requesterUID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusCompleted, done.Status)
	assert.Equal(t, domain.PostStatusCollected, env.getPost(t, post.ID).Status)

	// 重复确认幂等，不产生新事件
	before := env.publisher.count()
	again, err := env.lifecycle.CompleteClaim(ctx, ownerUID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusCompleted, again.Status)
	assert.Equal(t, before, env.publisher.count())
}

func TestCompleteClaimGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)

	t.Run("not a party", func(t *testing.T) {
		_, err := env.lifecycle.CompleteClaim(ctx, otherUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorNotClaimParty)
	})

	t.Run("pending claim cannot complete", func(t *testing.T) {
		_, err := env.lifecycle.CompleteClaim(ctx, requesterUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorClaimNotAccepted)
	})
}

func TestCancelClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)

	t.Run("only requester may cancel", func(t *testing.T) {
		_, err := env.lifecycle.CancelClaim(ctx, ownerUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorNotClaimRequester)
	})

	cancelled, err := env.lifecycle.CancelClaim(ctx, requesterUID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PostStatusAvailable, env.getPost(t, post.ID).Status)

	_, err = env.lifecycle.CancelClaim(ctx, requesterUID, claim.ID)
	assert.ErrorIs(t, err, code.ErrorClaimNotPending)
}

func TestCancelAcceptedClaimRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	_, err = env.lifecycle.AcceptClaim(ctx, ownerUID, claim.ID)
	require.NoError(t, err)

	// 已接受的请求不可单方撤回，帖子保持 reserved
	before := env.publisher.count()
	_, err = env.lifecycle.CancelClaim(ctx, requesterUID, claim.ID)
	assert.ErrorIs(t, err, code.ErrorClaimNotPending)
	assert.Equal(t, domain.ClaimStatusAccepted, env.getClaim(t, claim.ID).Status)
	assert.Equal(t, domain.PostStatusReserved, env.getPost(t, post.ID).Status)
	assert.Equal(t, before, env.publisher.count())
}

func TestDeleteClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)

	t.Run("active claim cannot be deleted", func(t *testing.T) {
		err := env.lifecycle.DeleteClaim(ctx, requesterUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorClaimNotTerminal)
	})

	_, err = env.lifecycle.CancelClaim(ctx, requesterUID, claim.ID)
	require.NoError(t, err)

	t.Run("outsider cannot delete", func(t *testing.T) {
		err := env.lifecycle.DeleteClaim(ctx, otherUID, claim.ID)
		assert.ErrorIs(t, err, code.ErrorNotClaimParty)
	})

	t.Run("party deletes terminal claim", func(t *testing.T) {
		require.NoError(t, env.lifecycle.DeleteClaim(ctx, ownerUID, claim.ID))

		got, err := env.store.Claims().GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDeleteCompletedClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.seedPost(t, ownerUID, domain.PostStatusAvailable, nil)

	claim, err := env.lifecycle.CreateClaim(ctx, requesterUID, post.ID, "")
	require.NoError(t, err)
	_, err = env.lifecycle.AcceptClaim(ctx, ownerUID, claim.ID)
	require.NoError(t, err)
	_, err = env.lifecycle.CompleteClaim(ctx, requesterUID, claim.ID)
	require.NoError(t, err)

	// completed 同为终态，当事方可清理历史记录
	require.NoError(t, env.lifecycle.DeleteClaim(ctx, requesterUID, claim.ID))
	got, err := env.store.Claims().GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
