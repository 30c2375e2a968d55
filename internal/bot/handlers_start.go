package bot

import (
	"context"
	"errors"

	"github.com/cidbot/backend/internal/service"
)

// handleStart greets the user and abandons any in-progress flow. The
// greeting differs depending on whether a profile exists yet.
func (r *Router) handleStart(ctx context.Context, session *Session) []Reply {
	session.ResetFlow()

	text := msgWelcome
	_, err := r.profiles.Get(ctx, session.UserID)
	switch {
	case err == nil:
		text += msgWelcomeHasProfile
		return []Reply{replyWithKeyboard(text, MainMenu())}
	case errors.Is(err, service.ErrProfileNotFound):
		return []Reply{replyWithKeyboard(text, FillProfile())}
	default:
		r.log.WithError(err).Error("failed to check profile on start")
		return []Reply{replyWithKeyboard(text, MainMenu())}
	}
}

func (r *Router) handleHelp(session *Session) []Reply {
	session.ResetFlow()
	return []Reply{replyWithKeyboard(msgHelp, BackToMenu())}
}

func (r *Router) handleMainMenu(session *Session) []Reply {
	session.ResetFlow()
	return []Reply{replyWithKeyboard(msgMainMenu, MainMenu())}
}

func (r *Router) handleSettings(session *Session) []Reply {
	session.ResetFlow()
	return []Reply{replyWithKeyboard(msgSettings, SettingsMenu())}
}

// handleAIChatStart switches into the sticky chat state. The state keeps
// routing text here until the user navigates elsewhere.
func (r *Router) handleAIChatStart(session *Session) []Reply {
	session.ResetFlow()
	session.State = StateAIChat
	return []Reply{replyWithKeyboard(msgAIChatIntro, BackToMenu())}
}

// handleAIChatMessage sends one message through the LLM with the rolling
// history window. It also serves as the fallback for unrouted text, in
// which case the session may still be in another state; the state is left
// untouched so the active flow is not broken by a side question.
func (r *Router) handleAIChatMessage(ctx context.Context, session *Session, text string) []Reply {
	answer, err := r.llm.Chat(ctx, text, session.RecentHistory())
	if err != nil {
		r.log.WithError(err).Warn("chat completion failed")
		return []Reply{reply(msgChatFailed)}
	}

	session.AppendHistory("user", text)
	session.AppendHistory("assistant", answer)

	return []Reply{reply(msgThinking), replyWithKeyboard(answer, BackToMenu())}
}
