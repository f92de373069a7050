package ports

import (
	"context"

	"github.com/bnema/memefi-tapper/internal/domain"
)

// GameAPI is the catalog of remote game operations available to one session.
type GameAPI interface {
	// Authorize sets the bearer token sent with later calls. An empty token
	// clears it.
	Authorize(token string)
	Login(ctx context.Context, identity domain.Identity) (domain.AccessToken, error)

	GameConfig(ctx context.Context) (domain.GameState, error)
	ProcessTaps(ctx context.Context, batch domain.TapBatch) (domain.GameState, error)
	SetNextBoss(ctx context.Context) error
	ActivateBooster(ctx context.Context, booster domain.BoosterType) error
	PurchaseUpgrade(ctx context.Context, upgrade domain.UpgradeType) error
	SpinSlotMachine(ctx context.Context, spins int) (domain.SpinResult, error)

	TapBotConfig(ctx context.Context) (domain.TapBotConfig, error)
	StartTapBot(ctx context.Context) (domain.TapBotRun, error)
	ClaimTapBot(ctx context.Context) (domain.TapBotRun, error)

	ListCampaigns(ctx context.Context) (domain.CampaignLists, error)
	CampaignTasks(ctx context.Context, campaignID string) ([]domain.Task, error)
	TaskDetail(ctx context.Context, taskID string) (domain.TaskDetail, error)
	MoveTaskToVerification(ctx context.Context, taskConfigID string) (domain.TaskDetail, error)
	MarkTaskCompleted(ctx context.Context, userTaskID string) (bool, error)
}
