package auth

import (
	"context"
	"testing"
)

func TestIdentityFromContext(t *testing.T) {
	ctx := context.Background()
	if got := IdentityFromContext(ctx); got != nil {
		t.Errorf("IdentityFromContext() on bare context = %v, want nil", got)
	}

	id := &Identity{Principal: "ops", Roles: []string{RoleAdmin}}
	got := IdentityFromContext(WithIdentity(ctx, id))
	if got != id {
		t.Errorf("IdentityFromContext() = %v, want the attached identity", got)
	}
}

func TestPrincipalFromContext(t *testing.T) {
	tests := []struct {
		name string
		id   *Identity
		want string
	}{
		{name: "no identity", want: "unknown"},
		{name: "blank principal", id: &Identity{Roles: []string{RoleViewer}}, want: "unknown"},
		{name: "anonymous", id: Anonymous(), want: "anonymous"},
		{name: "token subject", id: &Identity{Principal: "ops"}, want: "ops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.id != nil {
				ctx = WithIdentity(ctx, tt.id)
			}
			if got := PrincipalFromContext(ctx); got != tt.want {
				t.Errorf("PrincipalFromContext() = %q, want %q", got, tt.want)
			}
		})
	}
}
