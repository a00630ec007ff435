package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{MRN: "MRN-001", FirstName: "Amina", LastName: "Diallo", Gender: "female"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Gender != GenderFemale {
		t.Errorf("expected normalized gender %q, got %q", GenderFemale, p.Gender)
	}
}

func TestCreate_DuplicateMRN(t *testing.T) {
	svc := NewService(newMockRepo())
	first := &Patient{MRN: "MRN-001", FirstName: "Amina", LastName: "Diallo", Gender: "F"}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	dup := &Patient{MRN: "MRN-001", FirstName: "Kofi", LastName: "Mensah", Gender: "M"}
	if err := svc.Create(context.Background(), dup); err == nil {
		t.Error("expected error for duplicate mrn")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	cases := []struct {
		name    string
		patient Patient
	}{
		{"missing mrn", Patient{FirstName: "A", LastName: "B", Gender: "M"}},
		{"missing name", Patient{MRN: "MRN-002", Gender: "M"}},
		{"bad gender", Patient{MRN: "MRN-003", FirstName: "A", LastName: "B", Gender: "xyz"}},
		{"future birth date", Patient{MRN: "MRN-004", FirstName: "A", LastName: "B", Gender: "M",
			BirthDate: date(time.Now().Year()+1, 1, 1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.patient
			if err := svc.Create(context.Background(), &p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAgeOn(t *testing.T) {
	at := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		birth *time.Time
		want  int
	}{
		{"birthday passed this year", date(1990, 3, 1), 36},
		{"birthday later this year", date(1990, 9, 1), 35},
		{"birthday today", date(1990, 6, 15), 36},
		{"infant", date(2026, 1, 10), 0},
		{"nil birth date", nil, 0},
		{"future birth date", date(2027, 1, 1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Patient{BirthDate: tc.birth}
			if got := p.AgeOn(at); got != tc.want {
				t.Errorf("expected age %d, got %d", tc.want, got)
			}
		})
	}
}
