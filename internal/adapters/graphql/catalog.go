package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/memefi-tapper/internal/domain"
)

func (c *Client) Login(ctx context.Context, identity domain.Identity) (domain.AccessToken, error) {
	op := operation{
		OperationName: opLogin,
		Query:         queryLogin,
		Variables: map[string]any{
			"webAppData": map[string]any{
				"auth_date":       identity.AuthDate,
				"hash":            identity.Hash,
				"query_id":        identity.QueryID,
				"checkDataString": identity.CheckDataString(),
				"user": map[string]any{
					"id":                 identity.UserID,
					"allows_write_to_pm": true,
					"first_name":         identity.FirstName,
					"last_name":          identity.LastName,
					"username":           identity.Username,
					"language_code":      "en",
				},
			},
		},
	}

	var out loginDTO
	if err := c.call(ctx, op, "telegramUserLogin", &out); err != nil {
		return domain.AccessToken{}, err
	}
	if out.AccessToken == "" {
		return domain.AccessToken{}, fmt.Errorf("%s: %w", opLogin, domain.ErrEmptyResponse)
	}

	return domain.AccessToken{Value: out.AccessToken, ExpiresAt: tokenExpiry(out.AccessToken)}, nil
}

func (c *Client) GameConfig(ctx context.Context) (domain.GameState, error) {
	var out gameConfigDTO
	op := operation{OperationName: opGameConfig, Query: queryGameConfig, Variables: map[string]any{}}
	if err := c.call(ctx, op, "telegramGameGetConfig", &out); err != nil {
		return domain.GameState{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) ProcessTaps(ctx context.Context, batch domain.TapBatch) (domain.GameState, error) {
	if batch.Count <= 0 {
		return domain.GameState{}, errors.New("tap batch must contain at least one tap")
	}

	op := operation{
		OperationName: opProcessTaps,
		Query:         queryProcessTaps,
		Variables: map[string]any{
			"payload": map[string]any{
				"nonce":     batch.Nonce,
				"tapsCount": batch.Count,
				"vector":    batch.Vector,
			},
		},
	}

	var out gameConfigDTO
	if err := c.call(ctx, op, "telegramGameProcessTapsBatch", &out); err != nil {
		return domain.GameState{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) SetNextBoss(ctx context.Context) error {
	op := operation{OperationName: opSetNextBoss, Query: querySetNextBoss, Variables: map[string]any{}}
	return c.call(ctx, op, "telegramGameSetNextBoss", nil)
}

func (c *Client) ActivateBooster(ctx context.Context, booster domain.BoosterType) error {
	op := operation{
		OperationName: opActivateBooster,
		Query:         queryActivateBooster,
		Variables:     map[string]any{"boosterType": string(booster)},
	}
	return c.call(ctx, op, "telegramGameActivateBooster", nil)
}

func (c *Client) PurchaseUpgrade(ctx context.Context, upgrade domain.UpgradeType) error {
	op := operation{
		OperationName: opPurchaseUpgrade,
		Query:         queryPurchaseUpgrade,
		Variables:     map[string]any{"upgradeType": string(upgrade)},
	}
	return c.call(ctx, op, "telegramGamePurchaseUpgrade", nil)
}

func (c *Client) SpinSlotMachine(ctx context.Context, spins int) (domain.SpinResult, error) {
	op := operation{
		OperationName: opSpinSlotMachine,
		Query:         querySpinSlotMachine,
		Variables:     map[string]any{"payload": map[string]any{"spinsCount": spins}},
	}

	var out spinDTO
	if err := c.call(ctx, op, "slotMachineSpinV2", &out); err != nil {
		return domain.SpinResult{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) TapBotConfig(ctx context.Context) (domain.TapBotConfig, error) {
	var out tapBotDTO
	op := operation{OperationName: opTapBotConfig, Query: queryTapBotConfig, Variables: map[string]any{}}
	if err := c.call(ctx, op, "telegramGameTapbotGetConfig", &out); err != nil {
		return domain.TapBotConfig{}, err
	}

	return out.toConfig(), nil
}

func (c *Client) StartTapBot(ctx context.Context) (domain.TapBotRun, error) {
	var out tapBotDTO
	op := operation{OperationName: opTapBotStart, Query: queryTapBotStart, Variables: map[string]any{}}
	if err := c.call(ctx, op, "telegramGameTapbotStart", &out); err != nil {
		return domain.TapBotRun{}, err
	}

	return out.toRun(), nil
}

func (c *Client) ClaimTapBot(ctx context.Context) (domain.TapBotRun, error) {
	var out tapBotDTO
	op := operation{OperationName: opTapBotClaim, Query: queryTapBotClaim, Variables: map[string]any{}}
	if err := c.call(ctx, op, "telegramGameTapbotClaimCoins", &out); err != nil {
		return domain.TapBotRun{}, err
	}

	return out.toRun(), nil
}

func (c *Client) ListCampaigns(ctx context.Context) (domain.CampaignLists, error) {
	var out campaignListsDTO
	ops := []operation{{OperationName: opCampaignLists, Query: queryCampaignLists, Variables: map[string]any{}}}
	if err := c.callBatch(ctx, ops, "campaignLists", &out); err != nil {
		return domain.CampaignLists{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) CampaignTasks(ctx context.Context, campaignID string) ([]domain.Task, error) {
	ops := []operation{{
		OperationName: opCampaignTasks,
		Query:         queryCampaignTasks,
		Variables:     map[string]any{"campaignId": campaignID},
	}}

	var out []taskDTO
	if err := c.callBatch(ctx, ops, "campaignTasks", &out); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(out))
	for _, t := range out {
		tasks = append(tasks, domain.Task{ID: t.ID, Name: t.Name, Status: domain.TaskStatus(t.Status)})
	}

	return tasks, nil
}

func (c *Client) TaskDetail(ctx context.Context, taskID string) (domain.TaskDetail, error) {
	ops := []operation{
		{OperationName: opTaskByID, Query: queryTaskByID, Variables: map[string]any{"taskId": taskID}},
		{OperationName: opTwitterProfile, Query: queryTwitterProfile, Variables: map[string]any{}},
	}

	var out taskDetailDTO
	if err := c.callBatch(ctx, ops, "campaignTaskGetConfig", &out); err != nil {
		return domain.TaskDetail{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) MoveTaskToVerification(ctx context.Context, taskConfigID string) (domain.TaskDetail, error) {
	ops := []operation{{
		OperationName: opTaskToVerification,
		Query:         queryTaskToVerification,
		Variables:     map[string]any{"taskConfigId": taskConfigID},
	}}

	var out taskDetailDTO
	if err := c.callBatch(ctx, ops, "campaignTaskMoveToVerificationV2", &out); err != nil {
		return domain.TaskDetail{}, err
	}

	return out.toDomain(), nil
}

func (c *Client) MarkTaskCompleted(ctx context.Context, userTaskID string) (bool, error) {
	ops := []operation{{
		OperationName: opTaskMarkAsCompleted,
		Query:         queryTaskMarkAsCompleted,
		Variables:     map[string]any{"userTaskId": userTaskID},
	}}

	var out completionDTO
	if err := c.callBatch(ctx, ops, "campaignTaskMarkAsCompleted", &out); err != nil {
		return false, err
	}

	return domain.TaskStatus(out.Status) == domain.TaskStatusCompleted, nil
}
