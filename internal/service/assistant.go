package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

const historyContextSize = 5

// SessionStore keeps conversation history between requests.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*model.ChatSession, error)
	Save(ctx context.Context, sessionID string, session *model.ChatSession) error
	Delete(ctx context.Context, sessionID string) error
}

// StatsProvider supplies the live group snapshot used as conversation context.
type StatsProvider interface {
	Stats(ctx context.Context, shgID uuid.UUID) (*model.DashboardStats, error)
}

// AssistantService answers SHG questions. With an API key configured it calls
// an OpenAI-compatible chat endpoint, grounding the model on the group's live
// figures; without one it falls back to canned answers built from the same
// figures, so the assistant stays useful offline.
type AssistantService struct {
	sessions   SessionStore
	stats      StatsProvider
	apiKey     string
	apiURL     string
	enabled    bool
	httpClient *http.Client
	logger     *logrus.Logger
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type llmResponse struct {
	Choices []struct {
		Message llmMessage `json:"message"`
	} `json:"choices"`
}

func NewAssistantService(
	sessions SessionStore,
	stats StatsProvider,
	apiKey, baseURL string,
	logger *logrus.Logger,
) *AssistantService {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &AssistantService{
		sessions:   sessions,
		stats:      stats,
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(baseURL, "/") + "/chat/completions",
		enabled:    apiKey != "",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Chat answers one message in a session, updating the stored history.
func (s *AssistantService) Chat(ctx context.Context, shgID uuid.UUID, req model.ChatRequest) (*model.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}
	userRole := req.UserRole
	if userRole == "" {
		userRole = "Member"
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &model.ChatSession{UserRole: userRole, CreatedAt: time.Now()}
	}

	stats, err := s.stats.Stats(ctx, shgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant context: %w", err)
	}

	answer := s.generate(ctx, req.Message, stats, session)

	now := time.Now()
	session.History = append(session.History,
		model.ChatMessage{Role: model.ChatRoleUser, Content: req.Message, Timestamp: now},
		model.ChatMessage{Role: model.ChatRoleAssistant, Content: answer, Timestamp: now},
	)
	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		return nil, err
	}

	return &model.ChatResponse{
		Response:  answer,
		SessionID: sessionID,
		Timestamp: now,
	}, nil
}

func (s *AssistantService) History(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session not found", ErrNotFound)
	}
	return session, nil
}

func (s *AssistantService) ClearHistory(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// QuickReplies returns the predefined question shortcuts shown in the chat UI.
func (s *AssistantService) QuickReplies() []model.QuickReply {
	return []model.QuickReply{
		{Label: "Total Members", Query: "How many members do we have?"},
		{Label: "Total Savings", Query: "What is our total savings?"},
		{Label: "Active Loans", Query: "How many active loans do we have?"},
		{Label: "Pending EMIs", Query: "Show pending repayments"},
		{Label: "Dashboard Summary", Query: "Give me a dashboard overview"},
		{Label: "Village-wise Members", Query: "Show members by village"},
	}
}

// Context returns the raw group snapshot the assistant answers from.
func (s *AssistantService) Context(ctx context.Context, shgID uuid.UUID) (*model.DashboardStats, error) {
	return s.stats.Stats(ctx, shgID)
}

func (s *AssistantService) generate(ctx context.Context, query string, stats *model.DashboardStats, session *model.ChatSession) string {
	if !s.enabled {
		return s.fallbackAnswer(query, stats)
	}

	answer, err := s.callLLM(ctx, query, stats, session)
	if err != nil {
		s.logger.WithError(err).Warn("LLM call failed, using fallback answer")
		return s.fallbackAnswer(query, stats)
	}

	return answer
}

func (s *AssistantService) callLLM(ctx context.Context, query string, stats *model.DashboardStats, session *model.ChatSession) (string, error) {
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", err
	}

	messages := []llmMessage{{
		Role: "system",
		Content: fmt.Sprintf(`You are SakhiSahyog AI, an assistant for Self Help Groups (SHGs) in India.
Your role is to help %ss with their SHG-related queries.

CURRENT SHG DATA CONTEXT:
%s

GUIDELINES:
1. Answer from the data context above; if something is not in it, say so politely.
2. Be respectful and culturally sensitive, address users as "Sakhi".
3. Use simple, clear language and show amounts in Indian Rupees.
4. Encourage financial literacy and keep responses concise.`, session.UserRole, statsJSON),
	}}

	history := session.History
	if len(history) > historyContextSize {
		history = history[len(history)-historyContextSize:]
	}
	for _, msg := range history {
		messages = append(messages, llmMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llmMessage{Role: "user", Content: query})

	reqBody := llmRequest{
		Model:       "gpt-4o-mini",
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", err
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return llmResp.Choices[0].Message.Content, nil
}

// fallbackAnswer matches the query against common question patterns and
// answers from the live figures directly.
func (s *AssistantService) fallbackAnswer(query string, stats *model.DashboardStats) string {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "total member") || strings.Contains(q, "how many member"):
		return fmt.Sprintf("Namaste Sakhi!\n\nOur SHG has %d members across different villages. We're a strong community of women supporting each other!\n\nWould you like to know more about member distribution by village?",
			stats.TotalMembers)

	case strings.Contains(q, "total saving") || strings.Contains(q, "how much saved"):
		return fmt.Sprintf("Hello Sakhi!\n\nOur group has collected a total of Rs. %s in savings. That's amazing progress!\n\nOn average, each member has contributed Rs. %s.",
			stats.TotalSavings.StringFixed(0), stats.AverageSavingsPerMember.StringFixed(0))

	case strings.Contains(q, "loan") && (strings.Contains(q, "total") || strings.Contains(q, "how much") || strings.Contains(q, "how many") || strings.Contains(q, "active")):
		return fmt.Sprintf("Namaste!\n\nWe've disbursed Rs. %s in loans to support our members' businesses and needs.\n\nCurrently, we have %d active loans being repaid.",
			stats.TotalLoansDisbursed.StringFixed(0), stats.ActiveLoansCount)

	case strings.Contains(q, "repayment") || strings.Contains(q, "emi"):
		return fmt.Sprintf("Hello Sakhi!\n\nWe've collected Rs. %s in repayments so far.\n\nPending EMIs: %d\nOverdue EMIs: %d\n\nLet's ensure timely repayments to keep our SHG financially healthy!",
			stats.TotalRepaymentsCollected.StringFixed(0), stats.PendingRepayments, stats.OverdueRepayments)

	case strings.Contains(q, "dashboard") || strings.Contains(q, "summary") || strings.Contains(q, "overview"):
		return fmt.Sprintf("Namaste Sakhi! Here's our SHG summary:\n\nMembers: %d\nTotal Savings: Rs. %s\nLoans Disbursed: Rs. %s\nRepayments Collected: Rs. %s\nActive Loans: %d\n\nOur SHG is growing strong! Keep up the great work!",
			stats.TotalMembers, stats.TotalSavings.StringFixed(0), stats.TotalLoansDisbursed.StringFixed(0),
			stats.TotalRepaymentsCollected.StringFixed(0), stats.ActiveLoansCount)

	case strings.Contains(q, "village"):
		villages := make([]string, 0, len(stats.MembersByVillage))
		for village := range stats.MembersByVillage {
			villages = append(villages, village)
		}
		sort.Strings(villages)
		var b strings.Builder
		for _, village := range villages {
			fmt.Fprintf(&b, "- %s: %d members\n", village, stats.MembersByVillage[village])
		}
		return fmt.Sprintf("Namaste!\n\nHere are our members by village:\n%s\nTogether we're building stronger communities!", b.String())

	case strings.Contains(q, "help") || strings.Contains(q, "what can you do"):
		return "Namaste Sakhi!\n\nI'm your SakhiSahyog AI assistant. I can help you with:\n\n- Dashboard Overview: get the SHG summary\n- Member Information: total members, village-wise data\n- Savings Data: total savings, monthly collections\n- Loan Information: active loans, disbursed amounts\n- Repayment Status: EMIs, pending and overdue payments\n\nWhat would you like to know about?"

	default:
		return "Namaste Sakhi!\n\nI'm here to help you with information about our SHG. You can ask me about:\n- Member details and statistics\n- Savings and collections\n- Loans and credit\n- Repayments and EMIs\n\nWhat would you like to know?"
	}
}
