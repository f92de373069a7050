package application

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bnema/memefi-tapper/internal/config"
	"github.com/bnema/memefi-tapper/internal/domain"
)

var testEpoch = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// fakeClock advances instantly on Sleep. When cancelAfter is positive the
// cancel func fires once that many sleeps were recorded.
type fakeClock struct {
	mu          sync.Mutex
	now         time.Time
	sleeps      []time.Duration
	cancelAfter int
	cancel      context.CancelFunc
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.cancelAfter > 0 && len(c.sleeps) >= c.cancelAfter && c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// firstRandom always draws the lowest value.
type firstRandom struct{}

func (firstRandom) IntN(int) int { return 0 }

type fakeGameAPI struct {
	mu sync.Mutex

	calls      []string
	authorized []string

	loginToken domain.AccessToken
	loginErr   error

	configStates []domain.GameState
	configErr    error

	tapState domain.GameState
	tapErr   error
	batches  []domain.TapBatch

	nextBossErr   error
	nextBossCalls int

	boosters   []domain.BoosterType
	boosterErr error
	upgrades   []domain.UpgradeType

	spinResults []domain.SpinResult
	bets        []int

	tapBot      domain.TapBotConfig
	tapBotErr   error
	tapBotStart int
	tapBotClaim int

	campaigns      domain.CampaignLists
	campaignsErr   error
	tasks          map[string][]domain.Task
	details        map[string]domain.TaskDetail
	detailRequests []string
	verified       []string
	completed      []string
}

func newFakeGameAPI() *fakeGameAPI {
	return &fakeGameAPI{
		loginToken: domain.AccessToken{Value: "token-1"},
		tasks:      map[string][]domain.Task{},
		details:    map[string]domain.TaskDetail{},
	}
}

func (f *fakeGameAPI) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeGameAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (f *fakeGameAPI) Authorize(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorized = append(f.authorized, token)
}

func (f *fakeGameAPI) Login(context.Context, domain.Identity) (domain.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login")
	return f.loginToken, f.loginErr
}

func (f *fakeGameAPI) GameConfig(context.Context) (domain.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GameConfig")

	if f.configErr != nil {
		return domain.GameState{}, f.configErr
	}
	if len(f.configStates) == 0 {
		return domain.GameState{}, domain.ErrEmptyResponse
	}
	state := f.configStates[0]
	if len(f.configStates) > 1 {
		f.configStates = f.configStates[1:]
	}
	return state, nil
}

func (f *fakeGameAPI) ProcessTaps(_ context.Context, batch domain.TapBatch) (domain.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ProcessTaps")
	f.batches = append(f.batches, batch)
	return f.tapState, f.tapErr
}

func (f *fakeGameAPI) SetNextBoss(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetNextBoss")
	f.nextBossCalls++
	return f.nextBossErr
}

func (f *fakeGameAPI) ActivateBooster(_ context.Context, booster domain.BoosterType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActivateBooster")
	f.boosters = append(f.boosters, booster)
	return f.boosterErr
}

func (f *fakeGameAPI) PurchaseUpgrade(_ context.Context, upgrade domain.UpgradeType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PurchaseUpgrade")
	f.upgrades = append(f.upgrades, upgrade)
	return nil
}

func (f *fakeGameAPI) SpinSlotMachine(_ context.Context, spins int) (domain.SpinResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SpinSlotMachine")
	f.bets = append(f.bets, spins)

	if len(f.spinResults) == 0 {
		return domain.SpinResult{}, domain.ErrEmptyResponse
	}
	result := f.spinResults[0]
	f.spinResults = f.spinResults[1:]
	return result, nil
}

func (f *fakeGameAPI) TapBotConfig(context.Context) (domain.TapBotConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TapBotConfig")
	return f.tapBot, f.tapBotErr
}

func (f *fakeGameAPI) StartTapBot(context.Context) (domain.TapBotRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StartTapBot")
	f.tapBotStart++
	return domain.TapBotRun{DamagePerSec: 12}, nil
}

func (f *fakeGameAPI) ClaimTapBot(context.Context) (domain.TapBotRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClaimTapBot")
	f.tapBotClaim++
	return domain.TapBotRun{}, nil
}

func (f *fakeGameAPI) ListCampaigns(context.Context) (domain.CampaignLists, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListCampaigns")
	return f.campaigns, f.campaignsErr
}

func (f *fakeGameAPI) CampaignTasks(_ context.Context, campaignID string) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CampaignTasks")
	return f.tasks[campaignID], nil
}

func (f *fakeGameAPI) TaskDetail(_ context.Context, taskID string) (domain.TaskDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TaskDetail")
	f.detailRequests = append(f.detailRequests, taskID)

	detail, ok := f.details[taskID]
	if !ok {
		return domain.TaskDetail{}, domain.ErrEmptyResponse
	}
	return detail, nil
}

func (f *fakeGameAPI) MoveTaskToVerification(_ context.Context, taskConfigID string) (domain.TaskDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MoveTaskToVerification")
	f.verified = append(f.verified, taskConfigID)
	return domain.TaskDetail{ID: taskConfigID, Status: domain.TaskStatusVerification}, nil
}

func (f *fakeGameAPI) MarkTaskCompleted(_ context.Context, userTaskID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MarkTaskCompleted")
	f.completed = append(f.completed, userTaskID)
	return true, nil
}

type memorySnapshots struct {
	mu    sync.Mutex
	items map[string]domain.SessionSnapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{items: map[string]domain.SessionSnapshot{}}
}

func (m *memorySnapshots) Get(_ context.Context, name string) (domain.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.items[name]
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *memorySnapshots) List(context.Context) ([]domain.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.SessionSnapshot, 0, len(m.items))
	for _, snapshot := range m.items {
		out = append(out, snapshot)
	}
	return out, nil
}

func (m *memorySnapshots) Save(_ context.Context, snapshot domain.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[snapshot.SessionName] = snapshot
	return nil
}

// quietSettings disables every optional feature so tests opt in explicitly.
func quietSettings() config.GameSettings {
	return config.GameSettings{
		RandomTapsCount:    config.Fixed(100),
		SleepBetweenTap:    config.Fixed(10),
		MinAvailableEnergy: 200,
		SleepByMinEnergy:   config.Fixed(1800),
		AddTapsOnTurbo:     2500,
		ActiveTurboDelay:   config.Fixed(2),
		MaxTapLevel:        5,
		MaxEnergyLevel:     5,
		MaxChargeLevel:     5,
	}
}

func healthyState() domain.GameState {
	return domain.GameState{
		Coins:         1000,
		CurrentEnergy: 5000,
		MaxEnergy:     5000,
		WeaponLevel:   1,
		Boss:          domain.Boss{Level: 3, CurrentHealth: 90000, MaxHealth: 100000},
		Nonce:         "nonce-1",
	}
}

type sessionHarness struct {
	session   *Session
	api       *fakeGameAPI
	clock     *fakeClock
	snapshots *memorySnapshots
	logs      *observer.ObservedLogs
}

func newHarness(t *testing.T, settings config.GameSettings) *sessionHarness {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	api := newFakeGameAPI()
	clock := newFakeClock()
	snapshots := newMemorySnapshots()

	session := NewSession(domain.Identity{UserID: 42, Username: "ada"}, SessionDeps{
		API:       api,
		Clock:     clock,
		Random:    firstRandom{},
		Snapshots: snapshots,
		Logger:    zap.New(core),
		Settings:  settings,
		Proxy:     "socks5://10.0.0.1:1080",
	})

	return &sessionHarness{session: session, api: api, clock: clock, snapshots: snapshots, logs: logs}
}

func rawToken(id int64, username string) string {
	user := fmt.Sprintf(`{"id":%d,"first_name":"Test","last_name":"User","username":%q}`, id, username)
	return "query_id=AAE" + username + "&user=" + url.QueryEscape(user) + "&auth_date=1718000000&hash=abc123"
}
