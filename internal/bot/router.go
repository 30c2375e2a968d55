package bot

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cidbot/backend/internal/service"
)

// Router owns the dialogue: it loads the session for the incoming chat key,
// routes the event to the handler the current state demands, and saves the
// session back. Handlers mutate the session; the router is the only place
// that persists it.
type Router struct {
	sessions    SessionStore
	users       service.IUserService
	profiles    service.IProfileService
	plans       service.IPlanService
	foodLogs    service.IFoodLogService
	meals       service.IMealSuggestionService
	llm         service.ILLMService
	transcriber service.ITranscriber
	log         *logrus.Entry
	now         clock
}

// NewRouter wires the dialogue router with its collaborators
func NewRouter(
	sessions SessionStore,
	users service.IUserService,
	profiles service.IProfileService,
	plans service.IPlanService,
	foodLogs service.IFoodLogService,
	meals service.IMealSuggestionService,
	llm service.ILLMService,
	transcriber service.ITranscriber,
	log *logrus.Entry,
) *Router {
	return &Router{
		sessions:    sessions,
		users:       users,
		profiles:    profiles,
		plans:       plans,
		foodLogs:    foodLogs,
		meals:       meals,
		llm:         llm,
		transcriber: transcriber,
		log:         log,
		now:         time.Now,
	}
}

// Dispatch processes one incoming event and returns the replies to send.
// It never returns an error to the transport: failures degrade to an
// apologetic reply so the conversation is never left hanging.
func (r *Router) Dispatch(ctx context.Context, ev Event) []Reply {
	session, err := r.loadSession(ctx, ev)
	if err != nil {
		r.log.WithError(err).WithField("chat_key", ev.ChatKey).Error("failed to load session")
		return []Reply{reply(msgGenericError)}
	}

	var replies []Reply
	switch ev.Kind {
	case EventCommand:
		replies = r.handleCommand(ctx, session, ev)
	case EventCallback:
		replies = r.handleCallback(ctx, session, ev.Action)
	case EventVoice:
		replies = r.handleVoice(ctx, session, ev.VoiceURL)
	default:
		replies = r.routeText(ctx, session, ev.Text)
	}

	if err := r.sessions.Save(ctx, session); err != nil {
		r.log.WithError(err).WithField("chat_key", ev.ChatKey).Error("failed to save session")
	}
	return replies
}

// loadSession fetches the stored session or bootstraps one, resolving the
// chat key to a user account on first contact.
func (r *Router) loadSession(ctx context.Context, ev Event) (*Session, error) {
	session, err := r.sessions.Get(ctx, ev.ChatKey)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	user, err := r.users.GetOrCreate(ctx, ev.ChatKey, ev.Username, ev.FirstName)
	if err != nil {
		return nil, err
	}
	return &Session{
		ChatKey: ev.ChatKey,
		UserID:  user.ID,
		State:   StateIdle,
	}, nil
}

func (r *Router) handleCommand(ctx context.Context, session *Session, ev Event) []Reply {
	switch ev.Command {
	case "start":
		return r.handleStart(ctx, session)
	case "help":
		return r.handleHelp(session)
	default:
		// Unknown commands route like plain text.
		return r.routeText(ctx, session, ev.Text)
	}
}

func (r *Router) handleCallback(ctx context.Context, session *Session, action string) []Reply {
	switch action {
	case ActionMainMenu:
		return r.handleMainMenu(session)
	case ActionHelp:
		return r.handleHelp(session)
	case ActionProfile:
		return r.handleProfileView(ctx, session)
	case ActionEditProfile:
		return r.handleProfileEdit(session)
	case ActionUpdateWeight:
		return r.handleUpdateWeightStart(session)
	case ActionLogFood:
		return r.handleLogFoodStart(session)
	case ActionConfirmFood:
		return r.handleFoodConfirm(ctx, session)
	case ActionCancelFood:
		return r.handleFoodCancel(session)
	case ActionTodayStats:
		return r.handleTodayStats(ctx, session)
	case ActionNutritionPlan:
		return r.handlePlanView(ctx, session)
	case ActionMealSuggestions:
		return r.handleMealStart(ctx, session)
	case ActionAdjustPlan:
		return r.handleAdjustStart(ctx, session)
	case ActionRecalculatePlan:
		return r.handleRecalculate(ctx, session)
	case ActionAIChat:
		return r.handleAIChatStart(session)
	case ActionSettings:
		return r.handleSettings(session)
	}

	switch {
	case strings.HasPrefix(action, actionPrefixGender):
		return r.handleGenderSelected(session, strings.TrimPrefix(action, actionPrefixGender))
	case strings.HasPrefix(action, actionPrefixActivity):
		return r.handleActivitySelected(session, strings.TrimPrefix(action, actionPrefixActivity))
	case strings.HasPrefix(action, actionPrefixGoal):
		return r.handleGoalSelected(session, strings.TrimPrefix(action, actionPrefixGoal))
	case strings.HasPrefix(action, actionPrefixMethod):
		return r.handleMethodSelected(ctx, session, strings.TrimPrefix(action, actionPrefixMethod))
	}

	r.log.WithField("action", action).Warn("unknown callback action")
	return []Reply{replyWithKeyboard(msgMainMenu, MainMenu())}
}

// routeText directs free text by the session state. The default branch is
// the documented fallback: anything not claimed by a flow goes to AI chat,
// so no input is ever dropped.
func (r *Router) routeText(ctx context.Context, session *Session, text string) []Reply {
	switch session.State {
	case StateProfileAge:
		return r.handleAgeInput(session, text)
	case StateProfileHeight:
		return r.handleHeightInput(session, text)
	case StateProfileCurrentWeight:
		return r.handleCurrentWeightInput(ctx, session, text)
	case StateProfileTargetWeight:
		return r.handleTargetWeightInput(session, text)
	case StateProfileGender, StateProfileActivity, StateProfileGoal, StateProfileMethod:
		return r.handleButtonStepText(session)
	case StateFoodLogWaiting:
		return r.handleFoodDescription(ctx, session, text)
	case StateFoodLogConfirm:
		// A new description during confirmation replaces the pending one.
		return r.handleFoodDescription(ctx, session, text)
	case StateMealPlanRequest:
		return r.handleMealRequest(ctx, session, text)
	case StateAdjustNutrition:
		return r.handleAdjustRequest(ctx, session, text)
	default:
		return r.handleAIChatMessage(ctx, session, text)
	}
}

// handleVoice transcribes the audio and routes the transcript exactly as if
// it had been typed, echoing the recognized text first.
func (r *Router) handleVoice(ctx context.Context, session *Session, voiceURL string) []Reply {
	text, err := r.transcriber.Transcribe(ctx, voiceURL)
	if err != nil {
		r.log.WithError(err).Warn("voice transcription failed")
		return []Reply{reply(msgTranscriptionFailed)}
	}

	replies := []Reply{reply(formatTranscript(text))}
	return append(replies, r.routeText(ctx, session, text)...)
}
