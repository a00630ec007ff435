package auditevent

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lims/lims/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record persists one audit event, stamping the actor from the request
// identity. Persistence failures are logged, never propagated: an audit
// hiccup must not fail the business operation it describes.
func (s *Service) Record(ctx context.Context, e *AuditEvent) {
	if id := auth.IdentityFromContext(ctx); id != nil {
		e.ActorID = id.UserID
		e.ActorName = id.Name
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		log.Error().Err(err).
			Str("action", e.Action).
			Str("entity_id", e.EntityID).
			Msg("audit event write failed")
	}
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditEvent, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
