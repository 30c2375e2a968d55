package bot

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/service"
)

func (r *Router) handleLogFoodStart(session *Session) []Reply {
	session.ResetFlow()
	session.State = StateFoodLogWaiting
	return []Reply{reply(msgLogFoodIntro)}
}

// handleFoodDescription analyzes a free-text meal description and parks the
// result in the session for confirmation. Nothing touches the food log
// until the user confirms.
func (r *Router) handleFoodDescription(ctx context.Context, session *Session, text string) []Reply {
	analysis, err := r.llm.AnalyzeFood(ctx, text)
	if err != nil {
		r.log.WithError(err).Warn("food analysis failed")
		return []Reply{reply(msgAnalysisFailed)}
	}

	session.PendingFood = &PendingFood{
		Description: text,
		Name:        analysis.Name,
		Calories:    analysis.Calories,
		Protein:     analysis.Protein,
		Fats:        analysis.Fats,
		Carbs:       analysis.Carbs,
		PortionNote: analysis.PortionNote,
	}
	session.State = StateFoodLogConfirm

	return []Reply{
		reply(msgAnalyzingFood),
		replyWithKeyboard(formatFoodAnalysis(session.PendingFood), FoodConfirm()),
	}
}

// handleFoodConfirm persists the pending entry and reports the day so far.
// Stale confirm presses with no pending entry are answered, not ignored.
func (r *Router) handleFoodConfirm(ctx context.Context, session *Session) []Reply {
	pending := session.PendingFood
	if pending == nil || session.State != StateFoodLogConfirm {
		session.ResetFlow()
		return []Reply{replyWithKeyboard(msgNothingPending, MainMenu())}
	}

	entry := &models.FoodLog{
		ID:          uuid.New(),
		UserID:      session.UserID,
		Description: pending.Description,
		Calories:    pending.Calories,
		Protein:     pending.Protein,
		Fats:        pending.Fats,
		Carbs:       pending.Carbs,
		LoggedAt:    r.now(),
	}
	if err := r.foodLogs.Create(ctx, entry); err != nil {
		r.log.WithError(err).Error("failed to save food log")
		return []Reply{replyWithKeyboard(msgGenericError, FoodConfirm())}
	}

	session.ResetFlow()

	summary, err := r.foodLogs.Summarize(ctx, session.UserID, r.now())
	if err != nil {
		r.log.WithError(err).Error("failed to summarize day")
		return []Reply{replyWithKeyboard("Entry saved!", MainMenu())}
	}

	plan, err := r.plans.GetActive(ctx, session.UserID)
	if err != nil && !errors.Is(err, service.ErrNoActivePlan) {
		r.log.WithError(err).Error("failed to load active plan")
		plan = nil
	}

	return []Reply{replyWithKeyboard(formatFoodSaved(summary, plan), MainMenu())}
}

func (r *Router) handleFoodCancel(session *Session) []Reply {
	session.ResetFlow()
	return []Reply{replyWithKeyboard(msgFoodCancelled, MainMenu())}
}

// handleTodayStats shows consumption against the plan with percentages and
// the latest entries. Without a plan the user is pointed at profile setup.
func (r *Router) handleTodayStats(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	plan, err := r.plans.GetActive(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			return []Reply{replyWithKeyboard(msgNoPlanYet, FillProfile())}
		}
		r.log.WithError(err).Error("failed to load active plan")
		return []Reply{reply(msgGenericError)}
	}

	summary, err := r.foodLogs.Summarize(ctx, session.UserID, r.now())
	if err != nil {
		r.log.WithError(err).Error("failed to summarize day")
		return []Reply{reply(msgGenericError)}
	}

	logs, err := r.foodLogs.ListByDate(ctx, session.UserID, r.now())
	if err != nil {
		r.log.WithError(err).Error("failed to list food logs")
		logs = nil
	}

	return []Reply{replyWithKeyboard(formatTodayStats(summary, plan, logs), StatsActions())}
}
