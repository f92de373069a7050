package domain

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeCostDoublesPerLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{level: 0, want: 0},
		{level: 1, want: 1000},
		{level: 2, want: 2000},
		{level: 3, want: 4000},
		{level: 6, want: 32000},
		{level: MaxUpgradeLevel, want: 1000 << 53},
		{level: MaxUpgradeLevel + 1, want: math.MaxInt64},
		{level: 200, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("level %d", tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, UpgradeCost(tt.level))
		})
	}
}

func TestCanAffordRequiresStrictlyGreaterBalance(t *testing.T) {
	assert.False(t, CanAfford(4000, 3))
	assert.False(t, CanAfford(3999, 3))
	assert.True(t, CanAfford(4001, 3))
	assert.False(t, CanAfford(math.MaxInt64, MaxUpgradeLevel+1))
}

func TestTapVectorHasOneTokenPerTapInRange(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for _, taps := range []int{1, 7, 120, 2500} {
		vector := TapVector(taps, r.IntN)
		tokens := strings.Split(vector, ",")
		require.Len(t, tokens, taps)
		for _, token := range tokens {
			assert.Contains(t, []string{"1", "2", "3", "4"}, token)
		}
	}

	assert.Empty(t, TapVector(0, r.IntN))
}

func TestSpinMultiplierPicksLargestAffordableBet(t *testing.T) {
	tests := []struct {
		spins int
		want  int
	}{
		{spins: 0, want: 0},
		{spins: 1, want: 1},
		{spins: 4, want: 3},
		{spins: 9, want: 5},
		{spins: 49, want: 25},
		{spins: 150, want: 150},
		{spins: 900, want: 150},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d spins", tt.spins), func(t *testing.T) {
			assert.Equal(t, tt.want, SpinMultiplier(tt.spins))
		})
	}
}

func TestAccessTokenStaleness(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	token := AccessToken{Value: "abc"}
	assert.False(t, token.Stale(created, created.Add(2999*time.Second)))
	assert.True(t, token.Stale(created, created.Add(3000*time.Second)))
	assert.True(t, token.Stale(time.Time{}, created))
	assert.True(t, AccessToken{}.Stale(created, created))

	expiring := AccessToken{Value: "abc", ExpiresAt: created.Add(10 * time.Minute)}
	assert.False(t, expiring.Stale(created, created.Add(8*time.Minute)))
	assert.True(t, expiring.Stale(created, created.Add(9*time.Minute)))
}

func TestVerificationDelayClampsPastDeadlines(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30*time.Second, VerificationDelay(now.Add(30*time.Second), now))
	assert.Equal(t, time.Second, VerificationDelay(now.Add(-time.Hour), now))
}

func TestCampaignListsOrderedPutsSpecialFirst(t *testing.T) {
	lists := CampaignLists{
		Special: []Campaign{{ID: "s1"}},
		Normal:  []Campaign{{ID: "n1"}, {ID: "n2"}},
	}

	assert.Equal(t, []Campaign{{ID: "s1"}, {ID: "n1"}, {ID: "n2"}}, lists.Ordered())
}

func TestTapBotConfigAttempts(t *testing.T) {
	assert.True(t, TapBotConfig{UsedAttempts: 1, TotalAttempts: 3}.HasAttempts())
	assert.False(t, TapBotConfig{UsedAttempts: 3, TotalAttempts: 3}.HasAttempts())
	assert.False(t, TapBotConfig{}.Running())
}

func TestSessionFatalClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fatal       bool
		recoverable bool
	}{
		{name: "nil", err: nil},
		{name: "empty response", err: ErrEmptyResponse},
		{name: "protocol", err: &ProtocolError{Operation: "x", Message: "boom"}},
		{name: "bad request", err: &StatusError{Operation: "x", StatusCode: 400}},
		{name: "expired token", err: ErrExpiredToken, fatal: true, recoverable: true},
		{name: "unauthorized status", err: &StatusError{Operation: "x", StatusCode: 401, Err: ErrExpiredToken}, fatal: true, recoverable: true},
		{name: "game session", err: fmt.Errorf("wrap: %w", ErrGameSessionNotFound), fatal: true, recoverable: true},
		{name: "start game", err: ErrStartGame, fatal: true, recoverable: true},
		{name: "invalid session", err: ErrMalformedCredential, fatal: true},
		{name: "cancelled", err: context.Canceled, fatal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsSessionFatal(tt.err))
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
		})
	}
}

func TestSessionSnapshotApplyStateAndStaleness(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	snapshot := SessionSnapshot{SessionName: "ada", Passes: 3}.ApplyState(GameState{
		Coins:         9000,
		CurrentEnergy: 120,
		MaxEnergy:     1000,
		Boss:          Boss{Level: 4, CurrentHealth: 10, MaxHealth: 50},
	})

	assert.Equal(t, int64(9000), snapshot.Balance)
	assert.Equal(t, 4, snapshot.BossLevel)
	assert.Equal(t, 3, snapshot.Passes)
	assert.True(t, snapshot.IsStale(now, time.Minute))

	snapshot.LastPassAt = now.Add(-30 * time.Second)
	assert.False(t, snapshot.IsStale(now, time.Minute))
	assert.True(t, snapshot.IsStale(now.Add(time.Hour), time.Minute))
}
