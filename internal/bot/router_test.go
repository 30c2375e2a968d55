package bot

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidbot/backend/internal/models"
	"github.com/cidbot/backend/internal/nutrition"
	"github.com/cidbot/backend/internal/service"
)

// In-memory collaborators for router tests.

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) GetOrCreate(ctx context.Context, chatKey, username, firstName string) (*models.User, error) {
	return s.user, nil
}

type stubProfiles struct {
	profile       *models.UserProfile
	upsertErr     error
	upsertCalls   int
	updatedWeight *float64
}

func (s *stubProfiles) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if s.profile == nil {
		return nil, service.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *stubProfiles) Upsert(ctx context.Context, profile *models.UserProfile) error {
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.profile = profile
	return nil
}

func (s *stubProfiles) UpdateCurrentWeight(ctx context.Context, userID uuid.UUID, weightKg float64) error {
	if s.profile == nil {
		return service.ErrProfileNotFound
	}
	s.profile.CurrentWeightKg = weightKg
	s.updatedWeight = &weightKg
	return nil
}

type stubPlans struct {
	active    *models.NutritionPlan
	createErr error
	created   []*models.NutritionPlan
	adjusted  bool
}

func (s *stubPlans) GetActive(ctx context.Context, userID uuid.UUID) (*models.NutritionPlan, error) {
	if s.active == nil {
		return nil, service.ErrNoActivePlan
	}
	return s.active, nil
}

func (s *stubPlans) CreateActive(ctx context.Context, plan *models.NutritionPlan) error {
	if s.createErr != nil {
		return s.createErr
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	plan.IsActive = true
	s.active = plan
	s.created = append(s.created, plan)
	return nil
}

func (s *stubPlans) Adjust(ctx context.Context, planID uuid.UUID, targetCalories int, proteinG, fatsG, carbsG float64, explanation string) error {
	if s.active == nil || s.active.ID != planID {
		return service.ErrPlanNotFound
	}
	s.active.TargetCalories = targetCalories
	s.active.ProteinG = proteinG
	s.active.FatsG = fatsG
	s.active.CarbsG = carbsG
	s.active.MethodologyExplanation = explanation
	s.adjusted = true
	return nil
}

type stubFoodLogs struct {
	entries []*models.FoodLog
}

func (s *stubFoodLogs) Create(ctx context.Context, entry *models.FoodLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubFoodLogs) ListByDate(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.FoodLog, error) {
	logs := make([]models.FoodLog, 0, len(s.entries))
	for _, e := range s.entries {
		logs = append(logs, *e)
	}
	return logs, nil
}

func (s *stubFoodLogs) Summarize(ctx context.Context, userID uuid.UUID, day time.Time) (*service.DailySummary, error) {
	summary := &service.DailySummary{Count: len(s.entries)}
	for _, e := range s.entries {
		if e.Calories != nil {
			summary.Calories += *e.Calories
		}
		if e.Protein != nil {
			summary.Protein += *e.Protein
		}
		if e.Fats != nil {
			summary.Fats += *e.Fats
		}
		if e.Carbs != nil {
			summary.Carbs += *e.Carbs
		}
	}
	return summary, nil
}

type stubMeals struct {
	saved []*models.MealSuggestion
}

func (s *stubMeals) Create(ctx context.Context, suggestion *models.MealSuggestion) error {
	s.saved = append(s.saved, suggestion)
	return nil
}

type stubLLM struct {
	planResult  *service.PlanResult
	planErr     error
	analysis    *service.FoodAnalysis
	analyzeErr  error
	adjust      *service.AdjustResult
	adjustErr   error
	meal        *service.MealIdea
	mealErr     error
	chatReply   string
	chatErr     error
	chatHistory []service.ChatMessage
}

func (s *stubLLM) GeneratePlan(ctx context.Context, req service.PlanRequest) (*service.PlanResult, error) {
	if s.planErr != nil {
		return nil, s.planErr
	}
	if s.planResult == nil {
		return &service.PlanResult{}, nil
	}
	return s.planResult, nil
}

func (s *stubLLM) AdjustPlan(ctx context.Context, current *models.NutritionPlan, request string, profile *models.UserProfile) (*service.AdjustResult, error) {
	if s.adjustErr != nil {
		return nil, s.adjustErr
	}
	return s.adjust, nil
}

func (s *stubLLM) AnalyzeFood(ctx context.Context, description string) (*service.FoodAnalysis, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return s.analysis, nil
}

func (s *stubLLM) SuggestMeal(ctx context.Context, request string, plan *models.NutritionPlan, consumed *service.DailySummary) (*service.MealIdea, error) {
	if s.mealErr != nil {
		return nil, s.mealErr
	}
	return s.meal, nil
}

func (s *stubLLM) Chat(ctx context.Context, message string, history []service.ChatMessage) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	s.chatHistory = history
	return s.chatReply, nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return s.text, s.err
}

type routerFixture struct {
	router      *Router
	sessions    *MemorySessionStore
	profiles    *stubProfiles
	plans       *stubPlans
	foodLogs    *stubFoodLogs
	meals       *stubMeals
	llm         *stubLLM
	transcriber *stubTranscriber
	userID      uuid.UUID
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userID := uuid.New()
	f := &routerFixture{
		sessions:    NewMemorySessionStore(),
		profiles:    &stubProfiles{},
		plans:       &stubPlans{},
		foodLogs:    &stubFoodLogs{},
		meals:       &stubMeals{},
		llm:         &stubLLM{chatReply: "assistant answer"},
		transcriber: &stubTranscriber{},
		userID:      userID,
	}
	f.router = NewRouter(
		f.sessions,
		&stubUsers{user: &models.User{ID: userID, ChatKey: "chat-1"}},
		f.profiles, f.plans, f.foodLogs, f.meals, f.llm, f.transcriber,
		logrus.NewEntry(logger),
	)
	f.router.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	}
	return f
}

func (f *routerFixture) send(t *testing.T, ev Event) []Reply {
	t.Helper()
	ev.ChatKey = "chat-1"
	return f.router.Dispatch(context.Background(), ev)
}

func (f *routerFixture) text(t *testing.T, text string) []Reply {
	return f.send(t, Event{Kind: EventText, Text: text})
}

func (f *routerFixture) press(t *testing.T, action string) []Reply {
	return f.send(t, Event{Kind: EventCallback, Action: action})
}

func (f *routerFixture) session(t *testing.T) *Session {
	t.Helper()
	session, err := f.sessions.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func TestProfileFlowEndToEnd(t *testing.T) {
	f := newRouterFixture(t)

	replies := f.send(t, Event{Kind: EventCommand, Command: "start"})
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "C.I.D.")

	f.press(t, ActionProfile)
	assert.Equal(t, StateProfileAge, f.session(t).State)

	f.text(t, "30")
	assert.Equal(t, StateProfileGender, f.session(t).State)

	f.press(t, actionPrefixGender+"male")
	f.text(t, "180")
	f.text(t, "80")
	f.text(t, "75")
	assert.Equal(t, StateProfileActivity, f.session(t).State)

	f.press(t, actionPrefixActivity+"moderate")
	f.press(t, actionPrefixGoal+"lose")
	assert.Equal(t, StateProfileMethod, f.session(t).State)

	replies = f.press(t, actionPrefixMethod+"mifflin")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "PROFILE SAVED")

	require.NotNil(t, f.profiles.profile)
	assert.Equal(t, 30, f.profiles.profile.Age)
	assert.Equal(t, "male", f.profiles.profile.Gender)
	assert.Equal(t, 180.0, f.profiles.profile.HeightCm)
	assert.Equal(t, 80.0, f.profiles.profile.CurrentWeightKg)
	assert.Equal(t, 75.0, f.profiles.profile.TargetWeightKg)
	assert.Equal(t, "moderate", f.profiles.profile.ActivityLevel)
	assert.Equal(t, "lose", f.profiles.profile.Goal)
	assert.Equal(t, "mifflin", f.profiles.profile.CalculationMethod)

	require.NotNil(t, f.plans.active)
	want := nutrition.FullPlan(80, 180, 30, "male", "moderate", "lose", "mifflin")
	assert.Equal(t, want.BMR, f.plans.active.BMR)
	assert.Equal(t, want.TDEE, f.plans.active.TDEE)
	assert.Equal(t, want.TargetCalories, f.plans.active.TargetCalories)
	assert.Equal(t, want.ProteinG, f.plans.active.ProteinG)
	assert.True(t, f.plans.active.IsActive)

	assert.Equal(t, StateIdle, f.session(t).State)
	assert.Nil(t, f.session(t).Draft)
}

func TestProfileFlowInvalidInputNeverAdvances(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionProfile)

	replies := f.text(t, "abc")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "valid number")
	assert.Equal(t, StateProfileAge, f.session(t).State)

	replies = f.text(t, "200")
	assert.Contains(t, replies[0].Text, "between 10 and 120")
	assert.Equal(t, StateProfileAge, f.session(t).State)

	f.text(t, "30")
	assert.Equal(t, StateProfileGender, f.session(t).State)
}

func TestProfileFlowTextDuringButtonStepReprompts(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionProfile)
	f.text(t, "30")

	replies := f.text(t, "male")
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Keyboard)
	assert.Equal(t, StateProfileGender, f.session(t).State, "typed gender is ignored")
}

func TestPlanPersistFailureRetriesAtMethodStep(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionProfile)
	f.text(t, "30")
	f.press(t, actionPrefixGender+"male")
	f.text(t, "180")
	f.text(t, "80")
	f.text(t, "75")
	f.press(t, actionPrefixActivity+"moderate")
	f.press(t, actionPrefixGoal+"lose")

	f.plans.createErr = assert.AnError
	replies := f.press(t, actionPrefixMethod+"mifflin")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "retry")
	assert.Equal(t, StateProfileMethod, f.session(t).State, "session stays at method step")
	require.NotNil(t, f.session(t).Draft, "answers are kept for the retry")

	f.plans.createErr = nil
	replies = f.press(t, actionPrefixMethod+"mifflin")
	require.Len(t, replies, 2)
	assert.NotNil(t, f.plans.active)
	assert.Equal(t, 2, f.profiles.upsertCalls, "profile upsert is idempotent across the retry")
	assert.Equal(t, StateIdle, f.session(t).State)
}

func TestEditProfileFlowReportsUpdate(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.profile = &models.UserProfile{
		UserID: f.userID, Age: 30, Gender: "male", HeightCm: 180,
		CurrentWeightKg: 80, TargetWeightKg: 75,
		ActivityLevel: "moderate", Goal: "lose", CalculationMethod: "mifflin",
	}

	f.press(t, ActionEditProfile)
	require.NotNil(t, f.session(t).Draft)
	assert.True(t, f.session(t).Draft.Editing)

	f.text(t, "31")
	f.press(t, actionPrefixGender+"male")
	f.text(t, "180")
	f.text(t, "78")
	f.text(t, "74")
	f.press(t, actionPrefixActivity+"light")
	f.press(t, actionPrefixGoal+"maintain")
	replies := f.press(t, actionPrefixMethod+"harris")

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "PROFILE UPDATED")
	assert.NotContains(t, replies[1].Text, "PROFILE SAVED")
	assert.Equal(t, 31, f.profiles.profile.Age)
}

func TestQuickWeightUpdate(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.profile = &models.UserProfile{
		UserID:          f.userID,
		Age:             30,
		Gender:          "male",
		HeightCm:        180,
		CurrentWeightKg: 80,
		TargetWeightKg:  75,
	}

	f.press(t, ActionUpdateWeight)
	assert.True(t, f.session(t).QuickWeightUpdate)

	replies := f.text(t, "82,5")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "82.5")

	require.NotNil(t, f.profiles.updatedWeight)
	assert.Equal(t, 82.5, *f.profiles.updatedWeight)
	assert.Equal(t, 75.0, f.profiles.profile.TargetWeightKg, "only the current weight changes")
	assert.Equal(t, 0, f.profiles.upsertCalls, "quick update bypasses the full upsert")

	session := f.session(t)
	assert.Equal(t, StateIdle, session.State)
	assert.False(t, session.QuickWeightUpdate)
}

func TestQuickWeightUpdateWithoutProfile(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionUpdateWeight)

	replies := f.text(t, "82")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "profile")
	assert.False(t, f.session(t).QuickWeightUpdate)
}

func TestFoodLogConfirmFlow(t *testing.T) {
	f := newRouterFixture(t)
	cal, prot, fat, carb := 450.0, 25.0, 15.0, 55.0
	f.llm.analysis = &service.FoodAnalysis{
		Name:     "Chicken with buckwheat",
		Calories: &cal,
		Protein:  &prot,
		Fats:     &fat,
		Carbs:    &carb,
	}

	f.press(t, ActionLogFood)
	assert.Equal(t, StateFoodLogWaiting, f.session(t).State)

	replies := f.text(t, "chicken breast 150g, buckwheat 100g")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Chicken with buckwheat")
	assert.Equal(t, StateFoodLogConfirm, f.session(t).State)
	assert.Empty(t, f.foodLogs.entries, "nothing stored before confirmation")

	replies = f.press(t, ActionConfirmFood)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "ENTRY SAVED")

	require.Len(t, f.foodLogs.entries, 1)
	entry := f.foodLogs.entries[0]
	assert.Equal(t, "chicken breast 150g, buckwheat 100g", entry.Description)
	require.NotNil(t, entry.Calories)
	assert.Equal(t, 450.0, *entry.Calories)
	assert.Equal(t, 2026, entry.LoggedAt.Year())

	session := f.session(t)
	assert.Equal(t, StateIdle, session.State)
	assert.Nil(t, session.PendingFood)
}

func TestFoodLogCancelDiscardsPending(t *testing.T) {
	f := newRouterFixture(t)
	cal := 450.0
	f.llm.analysis = &service.FoodAnalysis{Name: "Soup", Calories: &cal}

	f.press(t, ActionLogFood)
	f.text(t, "soup")
	require.NotNil(t, f.session(t).PendingFood)

	replies := f.press(t, ActionCancelFood)
	assert.Contains(t, replies[0].Text, "cancelled")
	assert.Empty(t, f.foodLogs.entries)
	assert.Nil(t, f.session(t).PendingFood)
	assert.Equal(t, StateIdle, f.session(t).State)
}

func TestStaleFoodConfirmIsHandled(t *testing.T) {
	f := newRouterFixture(t)

	replies := f.press(t, ActionConfirmFood)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "no pending entry")
	assert.Empty(t, f.foodLogs.entries)
}

func TestTodayStatsWithoutPlanGuidesToProfile(t *testing.T) {
	f := newRouterFixture(t)

	replies := f.press(t, ActionTodayStats)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "profile")
	require.NotNil(t, replies[0].Keyboard)
}

func TestTodayStatsShowsPercentages(t *testing.T) {
	f := newRouterFixture(t)
	f.plans.active = &models.NutritionPlan{
		ID:             uuid.New(),
		UserID:         f.userID,
		TargetCalories: 2000,
		ProteinG:       150,
		FatsG:          60,
		CarbsG:         200,
		IsActive:       true,
	}
	cal, prot := 500.0, 30.0
	f.foodLogs.entries = append(f.foodLogs.entries, &models.FoodLog{
		Description: "breakfast",
		Calories:    &cal,
		Protein:     &prot,
		LoggedAt:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	})

	replies := f.press(t, ActionTodayStats)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "500 kcal (25%)")
	assert.Contains(t, replies[0].Text, "breakfast")
}

func TestUnroutedTextFallsBackToChat(t *testing.T) {
	f := newRouterFixture(t)

	replies := f.text(t, "why am I always hungry?")
	require.Len(t, replies, 2)
	assert.Equal(t, "assistant answer", replies[1].Text)

	session := f.session(t)
	require.Len(t, session.History, 2)
	assert.Equal(t, "user", session.History[0].Role)
	assert.Equal(t, "why am I always hungry?", session.History[0].Content)
}

func TestChatHistoryWindowIsSent(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionAIChat)

	for i := 0; i < 8; i++ {
		f.text(t, "question")
	}

	assert.Len(t, f.llm.chatHistory, historySend, "only the recent window goes to the model")
}

func TestAdjustPlanFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.plans.active = &models.NutritionPlan{
		ID:             uuid.New(),
		UserID:         f.userID,
		TargetCalories: 2216,
		ProteinG:       193.9,
		FatsG:          61.6,
		CarbsG:         221.6,
		IsActive:       true,
	}
	f.llm.adjust = &service.AdjustResult{
		TargetCalories: 2416,
		ProteinG:       200,
		FatsG:          65,
		CarbsG:         240,
		Explanation:    "Calories raised by 200 as requested.",
	}

	f.press(t, ActionAdjustPlan)
	assert.Equal(t, StateAdjustNutrition, f.session(t).State)

	replies := f.text(t, "increase calories by 200")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "2416")

	assert.True(t, f.plans.adjusted)
	assert.Equal(t, 2416, f.plans.active.TargetCalories)
	assert.Equal(t, StateIdle, f.session(t).State)
}

func TestMealSuggestionIsPersisted(t *testing.T) {
	f := newRouterFixture(t)
	f.plans.active = &models.NutritionPlan{ID: uuid.New(), UserID: f.userID, TargetCalories: 2000, IsActive: true}
	f.llm.meal = &service.MealIdea{
		Name:        "Baked salmon with rice",
		Ingredients: "salmon, rice, lemon",
		Calories:    520,
		FitsPlan:    true,
	}

	f.press(t, ActionMealSuggestions)
	assert.Equal(t, StateMealPlanRequest, f.session(t).State)

	replies := f.text(t, "I have salmon and rice")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Baked salmon with rice")

	require.Len(t, f.meals.saved, 1)
	assert.Equal(t, "Baked salmon with rice", f.meals.saved[0].Name)
	assert.Equal(t, f.userID, f.meals.saved[0].UserID)
}

func TestRecalculateRebuildsFromProfile(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.profile = &models.UserProfile{
		UserID:            f.userID,
		Age:               30,
		Gender:            "male",
		HeightCm:          180,
		CurrentWeightKg:   78,
		TargetWeightKg:    75,
		ActivityLevel:     "moderate",
		Goal:              "lose",
		CalculationMethod: "mifflin",
	}
	f.plans.active = &models.NutritionPlan{ID: uuid.New(), UserID: f.userID, TargetCalories: 9999, IsActive: true}

	replies := f.press(t, ActionRecalculatePlan)
	require.Len(t, replies, 1)

	want := nutrition.FullPlan(78, 180, 30, "male", "moderate", "lose", "mifflin")
	assert.Equal(t, want.TargetCalories, f.plans.active.TargetCalories)
	assert.Len(t, f.plans.created, 1)
}

func TestVoiceIsTranscribedAndRouted(t *testing.T) {
	f := newRouterFixture(t)
	cal := 300.0
	f.llm.analysis = &service.FoodAnalysis{Name: "Omelette", Calories: &cal}
	f.transcriber.text = "two eggs and cheese"

	f.press(t, ActionLogFood)
	replies := f.send(t, Event{Kind: EventVoice, VoiceURL: "https://example.com/voice.ogg"})

	require.Len(t, replies, 3)
	assert.Contains(t, replies[0].Text, "two eggs and cheese")
	assert.Contains(t, replies[2].Text, "Omelette")
	assert.Equal(t, StateFoodLogConfirm, f.session(t).State)
}

func TestVoiceTranscriptionFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.transcriber.err = assert.AnError

	replies := f.send(t, Event{Kind: EventVoice, VoiceURL: "https://example.com/voice.ogg"})
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "recognize")
}

func TestStaleCallbackRestartsCleanly(t *testing.T) {
	f := newRouterFixture(t)

	// Gender press with no profile flow in progress.
	replies := f.press(t, actionPrefixGender+"male")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "expired")
	assert.Equal(t, StateIdle, f.session(t).State)
}

func TestMealStartWithoutPlanGuidesToProfile(t *testing.T) {
	f := newRouterFixture(t)

	replies := f.press(t, ActionMealSuggestions)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "profile")
	assert.Equal(t, StateIdle, f.session(t).State)
}

func TestQuickWeightFlagClearedOnCancel(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionUpdateWeight)
	require.True(t, f.session(t).QuickWeightUpdate)

	f.press(t, ActionMainMenu)

	session := f.session(t)
	assert.False(t, session.QuickWeightUpdate)
	assert.Equal(t, StateIdle, session.State)
}

func TestStartResetsInProgressFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.press(t, ActionLogFood)
	require.Equal(t, StateFoodLogWaiting, f.session(t).State)

	f.send(t, Event{Kind: EventCommand, Command: "start"})
	assert.Equal(t, StateIdle, f.session(t).State)
}
