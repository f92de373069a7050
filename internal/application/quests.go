package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
)

const questStartDelay = 4 * time.Second

// runQuests walks every campaign task. Only context cancellation escapes;
// any other fatal API error stops the walk for this pass.
func (s *Session) runQuests(ctx context.Context) error {
	err := s.walkCampaigns(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.logger.Error("quests aborted", zap.Error(err))
	return nil
}

func (s *Session) walkCampaigns(ctx context.Context) error {
	lists, ok, err := Once(ctx, s.exec, "list campaigns", s.api.ListCampaigns)
	if err != nil || !ok {
		return err
	}

	for _, campaign := range lists.Ordered() {
		tasks, ok, err := Once(ctx, s.exec, "campaign tasks", func(ctx context.Context) ([]domain.Task, error) {
			return s.api.CampaignTasks(ctx, campaign.ID)
		})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		for _, task := range tasks {
			if task.Status == domain.TaskStatusCompleted {
				continue
			}
			if err := s.advanceTask(ctx, task); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Session) advanceTask(ctx context.Context, task domain.Task) error {
	detail, ok, err := Once(ctx, s.exec, "task detail", func(ctx context.Context) (domain.TaskDetail, error) {
		return s.api.TaskDetail(ctx, task.ID)
	})
	if err != nil || !ok {
		return err
	}

	if task.Status == domain.TaskStatusVerification {
		delay := domain.VerificationDelay(detail.VerificationAvailableAt, s.clock.Now())
		if err := s.sleep(ctx, delay); err != nil {
			return err
		}

		completed, ok, err := Once(ctx, s.exec, "complete task", func(ctx context.Context) (bool, error) {
			return s.api.MarkTaskCompleted(ctx, detail.UserTaskID)
		})
		if err != nil {
			return err
		}
		if ok && completed {
			logging.Success(s.logger, "quest completed", zap.String("quest", detail.Name))
		}
		return nil
	}

	_, ok, err = Once(ctx, s.exec, "verify task", func(ctx context.Context) (domain.TaskDetail, error) {
		return s.api.MoveTaskToVerification(ctx, detail.ID)
	})
	if err != nil {
		return err
	}
	if ok {
		logging.Success(s.logger, "quest started", zap.String("quest", detail.Name))
	}

	return s.sleep(ctx, questStartDelay)
}
