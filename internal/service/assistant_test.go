package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

type memorySessionStore struct {
	sessions map[string]*model.ChatSession
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*model.ChatSession)}
}

func (m *memorySessionStore) Get(_ context.Context, sessionID string) (*model.ChatSession, error) {
	return m.sessions[sessionID], nil
}

func (m *memorySessionStore) Save(_ context.Context, sessionID string, session *model.ChatSession) error {
	m.sessions[sessionID] = session
	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

type stubStatsProvider struct {
	stats model.DashboardStats
}

func (s *stubStatsProvider) Stats(_ context.Context, _ uuid.UUID) (*model.DashboardStats, error) {
	copied := s.stats
	return &copied, nil
}

func testStats() model.DashboardStats {
	return model.DashboardStats{
		TotalMembers:             8,
		ActiveMembers:            7,
		TotalSavings:             decimal.NewFromInt(45000),
		AverageSavingsPerMember:  decimal.NewFromInt(5625),
		TotalLoansDisbursed:      decimal.NewFromInt(60000),
		ActiveLoansCount:         3,
		TotalRepaymentsCollected: decimal.NewFromInt(12000),
		PendingRepayments:        14,
		OverdueRepayments:        2,
		MembersByVillage:         map[string]int{"Badgaon": 5, "Kherwara": 3},
	}
}

// No API key configured, so every answer comes from the offline fallback.
func newOfflineAssistant(sessions SessionStore) *AssistantService {
	return NewAssistantService(sessions, &stubStatsProvider{stats: testStats()}, "", "", testLogger())
}

func TestAssistantChatFallbackAnswers(t *testing.T) {
	svc := newOfflineAssistant(newMemorySessionStore())
	shgID := uuid.New()

	cases := []struct {
		name     string
		message  string
		contains string
	}{
		{"members", "How many members do we have?", "8 members"},
		{"savings", "What is our total savings?", "45000"},
		{"loans", "How many active loans do we have?", "3 active loans"},
		{"repayments", "Show pending repayments", "Pending EMIs: 14"},
		{"overdue", "Any overdue EMI this month?", "Overdue EMIs: 2"},
		{"summary", "Give me a dashboard overview", "Total Savings: Rs. 45000"},
		{"villages", "Show members by village", "Badgaon: 5 members"},
		{"help", "What can you do?", "SakhiSahyog AI assistant"},
		{"unknown", "Tell me a story", "I'm here to help"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Chat(context.Background(), shgID, model.ChatRequest{Message: tc.message})
			require.NoError(t, err)
			assert.Contains(t, resp.Response, tc.contains)
			assert.NotEmpty(t, resp.SessionID)
		})
	}
}

func TestAssistantChatSessionHistory(t *testing.T) {
	sessions := newMemorySessionStore()
	svc := newOfflineAssistant(sessions)
	shgID := uuid.New()

	first, err := svc.Chat(context.Background(), shgID, model.ChatRequest{Message: "How many members do we have?"})
	require.NoError(t, err)

	second, err := svc.Chat(context.Background(), shgID, model.ChatRequest{
		Message:   "What is our total savings?",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	session, err := svc.History(context.Background(), first.SessionID)
	require.NoError(t, err)
	require.Len(t, session.History, 4)
	assert.Equal(t, model.ChatRoleUser, session.History[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, session.History[1].Role)
	assert.Equal(t, "What is our total savings?", session.History[2].Content)
}

func TestAssistantChatRejectsEmptyMessage(t *testing.T) {
	svc := newOfflineAssistant(newMemorySessionStore())

	_, err := svc.Chat(context.Background(), uuid.New(), model.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssistantHistoryNotFound(t *testing.T) {
	svc := newOfflineAssistant(newMemorySessionStore())

	_, err := svc.History(context.Background(), "session_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssistantClearHistory(t *testing.T) {
	sessions := newMemorySessionStore()
	svc := newOfflineAssistant(sessions)

	resp, err := svc.Chat(context.Background(), uuid.New(), model.ChatRequest{Message: "help"})
	require.NoError(t, err)

	require.NoError(t, svc.ClearHistory(context.Background(), resp.SessionID))
	_, err = svc.History(context.Background(), resp.SessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssistantQuickReplies(t *testing.T) {
	svc := newOfflineAssistant(newMemorySessionStore())

	replies := svc.QuickReplies()
	require.Len(t, replies, 6)
	assert.Equal(t, "Total Members", replies[0].Label)
	for _, reply := range replies {
		assert.NotEmpty(t, reply.Query)
	}
}
