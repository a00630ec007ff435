package reference

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(nr *NormalRange) error {
	switch nr.RangeType {
	case TypeNumeric, TypeQualitative:
	default:
		return fmt.Errorf("unrecognized range type %q", nr.RangeType)
	}
	switch nr.Gender {
	case GenderMale, GenderFemale, GenderAny:
	default:
		return fmt.Errorf("unrecognized gender %q", nr.Gender)
	}
	if nr.AnalyteID == uuid.Nil {
		return fmt.Errorf("analyte id is required")
	}
	if nr.AgeMin != nil && nr.AgeMax != nil && *nr.AgeMin > *nr.AgeMax {
		return fmt.Errorf("age_min exceeds age_max")
	}
	if nr.MinValue != nil && nr.MaxValue != nil && *nr.MinValue > *nr.MaxValue {
		return fmt.Errorf("min_value exceeds max_value")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, nr *NormalRange) error {
	if err := s.validate(nr); err != nil {
		return err
	}
	return s.repo.Create(ctx, nr)
}

func (s *Service) Get(ctx context.Context, id int64) (*NormalRange, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByAnalyte(ctx context.Context, analyteID uuid.UUID) ([]*NormalRange, error) {
	return s.repo.GetByAnalyte(ctx, analyteID)
}

func (s *Service) Update(ctx context.Context, nr *NormalRange) error {
	if err := s.validate(nr); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, nr.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, nr)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ResolveFor looks up the analyte's range rows and resolves them for one
// subject and candidate value. Ranges are read fresh on every call so
// configuration edits apply to the next read immediately.
func (s *Service) ResolveFor(ctx context.Context, analyteID uuid.UUID, gender *string, ageYears *int, candidate string) (Resolution, error) {
	rows, err := s.repo.GetByAnalyte(ctx, analyteID)
	if err != nil {
		return Resolution{}, err
	}
	return Resolve(rows, gender, ageYears, candidate), nil
}
