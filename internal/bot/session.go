package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cidbot/backend/internal/service"
)

// sessionTTL is how long an idle session survives in Redis before the
// in-progress flow is discarded.
const sessionTTL = 24 * time.Hour

const (
	historyKeep = 20 // messages retained per session
	historySend = 10 // messages sent as chat context
)

// ProfileDraft is the scratch data collected field by field during profile
// creation. It is not persisted to the profile table until the final step.
type ProfileDraft struct {
	Age             int     `json:"age"`
	Gender          string  `json:"gender"`
	HeightCm        float64 `json:"height_cm"`
	CurrentWeightKg float64 `json:"current_weight_kg"`
	TargetWeightKg  float64 `json:"target_weight_kg"`
	ActivityLevel   string  `json:"activity_level"`
	Goal            string  `json:"goal"`
	Method          string  `json:"method"`
	Editing         bool    `json:"editing"`
}

// PendingFood is a food analysis awaiting user confirmation. It lives only
// in the session; nothing is written to the food log until confirmed.
type PendingFood struct {
	Description string   `json:"description"`
	Name        string   `json:"name"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Fats        *float64 `json:"fats"`
	Carbs       *float64 `json:"carbs"`
	PortionNote string   `json:"portion_note"`
}

// Session is the per-user conversation context: dialogue state, scratch
// data and the rolling chat history window.
type Session struct {
	ChatKey           string                `json:"chat_key"`
	UserID            uuid.UUID             `json:"user_id"`
	State             State                 `json:"state"`
	Draft             *ProfileDraft         `json:"draft,omitempty"`
	PendingFood       *PendingFood          `json:"pending_food,omitempty"`
	QuickWeightUpdate bool                  `json:"quick_weight_update"`
	History           []service.ChatMessage `json:"history,omitempty"`
}

// ResetFlow abandons any in-progress flow: back to Idle, scratch data
// discarded. Chat history survives so AI chat keeps its continuity.
func (s *Session) ResetFlow() {
	s.State = StateIdle
	s.Draft = nil
	s.PendingFood = nil
	s.QuickWeightUpdate = false
}

// AppendHistory records one chat exchange message, trimming the window.
func (s *Session) AppendHistory(role, content string) {
	s.History = append(s.History, service.ChatMessage{Role: role, Content: content})
	if len(s.History) > historyKeep {
		s.History = s.History[len(s.History)-historyKeep:]
	}
}

// RecentHistory returns the slice of history sent along with a chat call.
func (s *Session) RecentHistory() []service.ChatMessage {
	if len(s.History) <= historySend {
		return s.History
	}
	return s.History[len(s.History)-historySend:]
}

// SessionStore persists sessions between turns. Get returns (nil, nil)
// when no session exists for the key.
type SessionStore interface {
	Get(ctx context.Context, chatKey string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, chatKey string) error
}

// RedisSessionStore keeps sessions in Redis so in-progress dialogues
// survive a process restart.
type RedisSessionStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a new RedisSessionStore instance
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(chatKey string) string {
	return fmt.Sprintf("session:%s", chatKey)
}

// Get retrieves a session from Redis
func (s *RedisSessionStore) Get(ctx context.Context, chatKey string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(chatKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Save writes a session to Redis, refreshing its TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ChatKey), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

// Delete removes a session from Redis
func (s *RedisSessionStore) Delete(ctx context.Context, chatKey string) error {
	if err := s.client.Del(ctx, sessionKey(chatKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

// MemorySessionStore keeps sessions in process memory. Used in tests and
// when Redis is not configured; sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a new MemorySessionStore instance
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]byte)}
}

// Get retrieves a session copy from memory
func (s *MemorySessionStore) Get(ctx context.Context, chatKey string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[chatKey]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Save stores a session copy in memory
func (s *MemorySessionStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.mu.Lock()
	s.sessions[session.ChatKey] = data
	s.mu.Unlock()
	return nil
}

// Delete removes a session from memory
func (s *MemorySessionStore) Delete(ctx context.Context, chatKey string) error {
	s.mu.Lock()
	delete(s.sessions, chatKey)
	s.mu.Unlock()
	return nil
}
