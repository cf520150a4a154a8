package actions

import (
	"context"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func (s *Service) GetNews(_ context.Context, _ string, _ domain.GetNewsParams) domain.ExecutionOutcome {
	return domain.Succeeded("📰 News updates are coming soon!", "News updates are coming soon.")
}
