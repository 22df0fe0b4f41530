package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genClaimStatus 随机领取请求状态
func genClaimStatus() gopter.Gen {
	return gen.OneConstOf(
		ClaimStatusPending,
		ClaimStatusAccepted,
		ClaimStatusDeclined,
		ClaimStatusCompleted,
		ClaimStatusCancelled,
	)
}

// 状态推导是领取请求集合的确定性函数
func TestProperty_DerivePostStatus(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// 存在 completed 请求时帖子必为 collected，过期与否无关
	properties.Property("completed claim forces collected", prop.ForAll(
		func(statuses []ClaimStatus, deadlinePassed bool) bool {
			statuses = append(statuses, ClaimStatusCompleted)
			return DerivePostStatus(statuses, deadlinePassed) == PostStatusCollected
		},
		gen.SliceOf(genClaimStatus()),
		gen.Bool(),
	))

	// 过期优先于 reserved/requested/available
	properties.Property("deadline wins over active claims", prop.ForAll(
		func(statuses []ClaimStatus) bool {
			for _, s := range statuses {
				if s == ClaimStatusCompleted {
					return true // 由上一条属性覆盖
				}
			}
			return DerivePostStatus(statuses, true) == PostStatusExpired
		},
		gen.SliceOf(genClaimStatus()),
	))

	// 无过期时：accepted → reserved，否则 pending → requested，否则 available
	properties.Property("active claims order", prop.ForAll(
		func(statuses []ClaimStatus) bool {
			var hasCompleted, hasAccepted, hasPending bool
			for _, s := range statuses {
				switch s {
				case ClaimStatusCompleted:
					hasCompleted = true
				case ClaimStatusAccepted:
					hasAccepted = true
				case ClaimStatusPending:
					hasPending = true
				}
			}
			got := DerivePostStatus(statuses, false)
			switch {
			case hasCompleted:
				return got == PostStatusCollected
			case hasAccepted:
				return got == PostStatusReserved
			case hasPending:
				return got == PostStatusRequested
			default:
				return got == PostStatusAvailable
			}
		},
		gen.SliceOf(genClaimStatus()),
	))

	// 推导结果只可能落在已定义的状态集合
	properties.Property("result is a defined status", prop.ForAll(
		func(statuses []ClaimStatus, deadlinePassed bool) bool {
			switch DerivePostStatus(statuses, deadlinePassed) {
			case PostStatusAvailable, PostStatusRequested, PostStatusReserved,
				PostStatusCollected, PostStatusExpired:
				return true
			}
			return false
		},
		gen.SliceOf(genClaimStatus()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestPost_DeadlinePassed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		bestBefore *time.Time
		want       bool
	}{
		{name: "no deadline never expires", bestBefore: nil, want: false},
		{name: "past deadline", bestBefore: &past, want: true},
		{name: "exact deadline counts as passed", bestBefore: &now, want: true},
		{name: "future deadline", bestBefore: &future, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{Status: PostStatusAvailable, BestBefore: tt.bestBefore}
			if got := p.DeadlinePassed(now); got != tt.want {
				t.Errorf("DeadlinePassed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPost_SweepDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	// 已收取 / 已过期的帖子不再参与扫描
	for _, status := range []PostStatus{PostStatusCollected, PostStatusExpired} {
		p := &Post{Status: status, BestBefore: &past}
		if p.SweepDue(now) {
			t.Errorf("SweepDue() = true for terminal status %s", status)
		}
	}

	for _, status := range ActivePostStatuses() {
		p := &Post{Status: status, BestBefore: &past}
		if !p.SweepDue(now) {
			t.Errorf("SweepDue() = false for %s with past deadline", status)
		}
	}
}

func TestClaimStatus_Terminal(t *testing.T) {
	active := []ClaimStatus{ClaimStatusPending, ClaimStatusAccepted}
	terminal := []ClaimStatus{ClaimStatusDeclined, ClaimStatusCompleted, ClaimStatusCancelled}

	for _, s := range active {
		if s.IsTerminal() || !s.IsActive() {
			t.Errorf("%s should be active and not terminal", s)
		}
	}
	for _, s := range terminal {
		if !s.IsTerminal() || s.IsActive() {
			t.Errorf("%s should be terminal and not active", s)
		}
	}
}
