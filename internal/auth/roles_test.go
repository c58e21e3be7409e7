package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/market-portal/internal/domain"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		session domain.Session
		want    Decision
	}{
		{"anonymous authenticated route", PolicyAuthenticated, domain.Session{}, Decision{Outcome: OutcomeRedirectLogin}},
		{"anonymous privileged route", PolicyPrivileged, domain.Session{}, Decision{Outcome: OutcomeRedirectLogin}},
		{"anonymous with stale admin role", PolicyPrivileged,
			domain.Session{Role: domain.ResolvedRole(domain.RoleAdmin)}, Decision{Outcome: OutcomeRedirectLogin}},
		{"token with pending role on authenticated route", PolicyAuthenticated,
			domain.Session{Token: "t", Role: domain.UnresolvedRole()}, Decision{Outcome: OutcomeRender}},
		{"standard user on privileged route", PolicyPrivileged,
			domain.Session{Token: "t", Role: domain.ResolvedRole(domain.RoleStandard)}, Decision{Outcome: OutcomeForbidden}},
		{"pending role on privileged route", PolicyPrivileged,
			domain.Session{Token: "t", Role: domain.UnresolvedRole()}, Decision{Outcome: OutcomeForbidden, Pending: true}},
		{"admin on privileged route", PolicyPrivileged,
			domain.Session{Token: "t", Role: domain.ResolvedRole(domain.RoleAdmin)}, Decision{Outcome: OutcomeRender}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.policy, tc.session))
		})
	}
}
