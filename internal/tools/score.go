package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hutchisr/grok/internal/ledger"
)

// GetScoreTool reads a user's current score.
type GetScoreTool struct {
	ledger *ledger.Service
}

// NewGetScoreTool creates the get_score tool.
func NewGetScoreTool(svc *ledger.Service) *GetScoreTool {
	return &GetScoreTool{ledger: svc}
}

func (t *GetScoreTool) Name() string { return "get_score" }

func (t *GetScoreTool) Description() string {
	return "Returns a user's current score (zero if they have none)."
}

func (t *GetScoreTool) Args() []string { return []string{"user"} }

func (t *GetScoreTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	user := strings.TrimSpace(GetString(params, "user", ""))
	if user == "" {
		return "Error: a username is required", nil
	}
	score, err := t.ledger.GetScore(ctx, user)
	if err != nil {
		return fmt.Sprintf("Error: could not read score: %v", err), nil
	}
	return fmt.Sprintf("%s has %d points", ledger.NormalizeUser(user), score), nil
}

// AdjustScoreTool applies a signed score adjustment with a reason.
type AdjustScoreTool struct {
	ledger *ledger.Service
}

// NewAdjustScoreTool creates the adjust_score tool.
func NewAdjustScoreTool(svc *ledger.Service) *AdjustScoreTool {
	return &AdjustScoreTool{ledger: svc}
}

func (t *AdjustScoreTool) Name() string { return "adjust_score" }

func (t *AdjustScoreTool) Description() string {
	return "Adds a positive or negative amount to a user's score. A reason is required."
}

func (t *AdjustScoreTool) Args() []string { return []string{"user", "amount", "reason"} }

func (t *AdjustScoreTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	user := strings.TrimSpace(GetString(params, "user", ""))
	if user == "" {
		return "Error: a username is required", nil
	}
	amount := int64(GetInt(params, "amount", 0))
	if amount == 0 {
		return "Error: a non-zero amount is required", nil
	}
	reason := strings.TrimSpace(GetString(params, "reason", ""))
	if reason == "" {
		return "Error: a reason is required", nil
	}
	score, err := t.ledger.AdjustScore(ctx, user, amount, reason)
	if err != nil {
		return fmt.Sprintf("Error: could not adjust score: %v", err), nil
	}
	return fmt.Sprintf("%s now has %d points (%+d: %s)", ledger.NormalizeUser(user), score, amount, reason), nil
}

// GetHistoryTool reads a user's recent score adjustments.
type GetHistoryTool struct {
	ledger *ledger.Service
}

// NewGetHistoryTool creates the get_history tool.
func NewGetHistoryTool(svc *ledger.Service) *GetHistoryTool {
	return &GetHistoryTool{ledger: svc}
}

func (t *GetHistoryTool) Name() string { return "get_history" }

func (t *GetHistoryTool) Description() string {
	return "Returns a user's most recent score adjustments, newest first."
}

func (t *GetHistoryTool) Args() []string { return []string{"user", "limit"} }

func (t *GetHistoryTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	user := strings.TrimSpace(GetString(params, "user", ""))
	if user == "" {
		return "Error: a username is required", nil
	}
	records, err := t.ledger.GetHistory(ctx, user, GetInt(params, "limit", 10))
	if err != nil {
		return fmt.Sprintf("Error: could not read history: %v", err), nil
	}
	if len(records) == 0 {
		return fmt.Sprintf("%s has no score history.", ledger.NormalizeUser(user)), nil
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%+d %s (%s)\n", rec.Amount, rec.Reason, rec.Timestamp.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// GetLeaderboardTool reads the ranked top scores.
type GetLeaderboardTool struct {
	ledger *ledger.Service
}

// NewGetLeaderboardTool creates the get_leaderboard tool.
func NewGetLeaderboardTool(svc *ledger.Service) *GetLeaderboardTool {
	return &GetLeaderboardTool{ledger: svc}
}

func (t *GetLeaderboardTool) Name() string { return "get_leaderboard" }

func (t *GetLeaderboardTool) Description() string {
	return "Returns the top users by score, highest first."
}

func (t *GetLeaderboardTool) Args() []string { return []string{"limit"} }

func (t *GetLeaderboardTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	entries, err := t.ledger.GetLeaderboard(ctx, GetInt(params, "limit", 10))
	if err != nil {
		return fmt.Sprintf("Error: could not read leaderboard: %v", err), nil
	}
	if len(entries) == 0 {
		return "The leaderboard is empty.", nil
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%d. %s: %d\n", entry.Rank, entry.Username, entry.Score)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
