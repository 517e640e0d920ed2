package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/hutchisr/grok/internal/ledger"
)

func newLedger() *ledger.Service {
	return ledger.NewService(ledger.NewMemoryStore())
}

func TestAdjustScoreTool_RoundTrip(t *testing.T) {
	svc := newLedger()
	adjust := NewAdjustScoreTool(svc)
	get := NewGetScoreTool(svc)
	ctx := context.Background()

	out, err := adjust.Execute(ctx, map[string]any{
		"user":   "@Alice",
		"amount": 5,
		"reason": "good answer",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "5") || !strings.Contains(out, "alice") {
		t.Errorf("unexpected observation: %q", out)
	}

	out, err = get.Execute(ctx, map[string]any{"user": "alice"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "alice has 5 points") {
		t.Errorf("unexpected observation: %q", out)
	}
}

func TestAdjustScoreTool_RequiresReason(t *testing.T) {
	tool := NewAdjustScoreTool(newLedger())
	out, err := tool.Execute(context.Background(), map[string]any{
		"user":   "alice",
		"amount": 1,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "Error") || !strings.Contains(out, "reason") {
		t.Errorf("expected a reason error, got %q", out)
	}
}

func TestGetScoreTool_UnknownUser(t *testing.T) {
	tool := NewGetScoreTool(newLedger())
	out, err := tool.Execute(context.Background(), map[string]any{"user": "nobody"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "0 points") {
		t.Errorf("unknown users read as zero, got %q", out)
	}
}

func TestGetHistoryTool(t *testing.T) {
	svc := newLedger()
	ctx := context.Background()
	if _, err := svc.AdjustScore(ctx, "alice", 5, "helpful reply"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AdjustScore(ctx, "alice", -2, "wrong answer"); err != nil {
		t.Fatal(err)
	}

	tool := NewGetHistoryTool(svc)
	out, err := tool.Execute(ctx, map[string]any{"user": "alice"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "helpful reply") || !strings.Contains(out, "wrong answer") {
		t.Errorf("history entries missing: %q", out)
	}
	if strings.Index(out, "wrong answer") > strings.Index(out, "helpful reply") {
		t.Errorf("expected newest first: %q", out)
	}
}

func TestGetLeaderboardTool(t *testing.T) {
	svc := newLedger()
	ctx := context.Background()
	for user, amount := range map[string]int64{"alice": 10, "bob": 30} {
		if _, err := svc.AdjustScore(ctx, user, amount, "seed"); err != nil {
			t.Fatal(err)
		}
	}

	tool := NewGetLeaderboardTool(svc)
	out, err := tool.Execute(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Errorf("expected bob ranked above alice: %q", out)
	}
}
