package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/memefi-tapper/internal/domain"
)

func seedCampaigns(api *fakeGameAPI) {
	api.campaigns = domain.CampaignLists{
		Special: []domain.Campaign{{ID: "special-1", Name: "Launch"}},
		Normal:  []domain.Campaign{{ID: "normal-1", Name: "Socials"}},
	}
	api.tasks["special-1"] = []domain.Task{
		{ID: "task-done", Name: "Done", Status: domain.TaskStatusCompleted},
		{ID: "task-verify", Name: "Watch video", Status: domain.TaskStatusVerification},
	}
	api.tasks["normal-1"] = []domain.Task{
		{ID: "task-new", Name: "Follow", Status: domain.TaskStatusNotStarted},
	}
	api.details["task-verify"] = domain.TaskDetail{
		ID:                      "cfg-verify",
		Name:                    "Watch video",
		UserTaskID:              "user-task-1",
		VerificationAvailableAt: testEpoch.Add(30 * time.Second),
	}
	api.details["task-new"] = domain.TaskDetail{ID: "cfg-new", Name: "Follow"}
}

func TestQuestsSkipCompletedAndAdvanceOthers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, quietSettings())
	seedCampaigns(h.api)

	require.NoError(t, h.session.runQuests(context.Background()))

	assert.Equal(t, []string{"task-verify", "task-new"}, h.api.detailRequests, "completed tasks are never fetched")
	assert.Equal(t, []string{"user-task-1"}, h.api.completed)
	assert.Equal(t, []string{"cfg-new"}, h.api.verified)
	assert.Equal(t, []time.Duration{30 * time.Second, 4 * time.Second}, h.clock.Sleeps())
	assert.Len(t, h.logs.FilterMessage("quest completed").All(), 1)
	assert.Len(t, h.logs.FilterMessage("quest started").All(), 1)
}

func TestQuestsPastVerificationDeadlineWaitsOneSecond(t *testing.T) {
	t.Parallel()

	h := newHarness(t, quietSettings())
	h.api.campaigns = domain.CampaignLists{Normal: []domain.Campaign{{ID: "c"}}}
	h.api.tasks["c"] = []domain.Task{{ID: "t", Status: domain.TaskStatusVerification}}
	h.api.details["t"] = domain.TaskDetail{ID: "t", UserTaskID: "u", VerificationAvailableAt: testEpoch.Add(-time.Hour)}

	require.NoError(t, h.session.runQuests(context.Background()))

	assert.Equal(t, []time.Duration{time.Second}, h.clock.Sleeps())
	assert.Equal(t, []string{"u"}, h.api.completed)
}

func TestQuestsAbortOnFatalErrorWithoutFailingPass(t *testing.T) {
	t.Parallel()

	h := newHarness(t, quietSettings())
	h.api.campaignsErr = domain.ErrExpiredToken

	require.NoError(t, h.session.runQuests(context.Background()))
	assert.Len(t, h.logs.FilterMessage("quests aborted").All(), 1)
}

func TestQuestsReturnContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(t, quietSettings())
	seedCampaigns(h.api)
	h.clock.cancelAfter = 1
	h.clock.cancel = cancel

	err := h.session.runQuests(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.api.completed)
}
