package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func (s *Service) Remember(ctx context.Context, userID string, p domain.RememberParams) domain.ExecutionOutcome {
	entry := fmt.Sprintf("\n\n### %s (%s)\n%s", p.Section, s.now().Format("2006-01-02 15:04"), p.Content)
	err := run(ctx, s, "profile store", func(ctx context.Context) error {
		return s.deps.Profiles.AppendKnowledge(ctx, userID, entry)
	})
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return domain.Failed("Your knowledge base was being updated at the same time. Please try again.")
	}
	if err != nil {
		return s.fail(domain.IntentRemember, userID, "Failed to save that", err)
	}
	return domain.Succeeded(
		fmt.Sprintf("🧠 Got it, I'll remember that (%s).", p.Section),
		"Got it, I'll remember that.",
	).WithData("section", p.Section)
}
