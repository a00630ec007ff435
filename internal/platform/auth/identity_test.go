package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestResolveCapabilities_Wildcard(t *testing.T) {
	caps := ResolveCapabilities([]string{"technician"}, []string{"*"}, nil)
	if !caps.Elevated {
		t.Error("expected elevated capability for wildcard permission")
	}
}

func TestResolveCapabilities_SeniorRoles(t *testing.T) {
	cases := []struct {
		role   string
		senior bool
	}{
		{"Pathologist", true},
		{"Senior Scientist", true},
		{"HEMATOLOGIST", true},
		{"System Administrator", true},
		{"phlebotomist", false},
		{"reception", false},
	}
	for _, tc := range cases {
		caps := ResolveCapabilities([]string{tc.role}, nil, nil)
		if caps.SeniorStaff != tc.senior {
			t.Errorf("role %q: expected senior=%v, got %v", tc.role, tc.senior, caps.SeniorStaff)
		}
	}
}

func TestResolveCapabilities_ManagerialRoles(t *testing.T) {
	caps := ResolveCapabilities([]string{"Lab Manager"}, nil, nil)
	if caps.SeniorStaff {
		t.Error("manager should not gain the senior-staff capability")
	}
	if !caps.Managerial {
		t.Error("expected managerial capability for manager role")
	}

	caps = ResolveCapabilities([]string{"Medical Director"}, nil, nil)
	if !caps.Managerial {
		t.Error("expected managerial capability for director role")
	}
}

func TestResolveCapabilities_SeniorImpliesManagerial(t *testing.T) {
	caps := ResolveCapabilities([]string{"pathologist"}, nil, nil)
	if !caps.Managerial {
		t.Error("senior staff should carry the managerial capability")
	}
}

func TestResolveCapabilities_Department(t *testing.T) {
	dept := uuid.New()
	caps := ResolveCapabilities([]string{"technician"}, nil, &dept)
	if caps.Department == nil || *caps.Department != dept {
		t.Error("expected department to be carried into capabilities")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{UserID: "u1", Name: "Tech One"}
	ctx := WithIdentity(context.Background(), id)
	got := IdentityFromContext(ctx)
	if got == nil || got.UserID != "u1" {
		t.Errorf("expected identity u1, got %+v", got)
	}
	if IdentityFromContext(context.Background()) != nil {
		t.Error("expected nil identity on empty context")
	}
}
