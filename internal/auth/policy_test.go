package auth_test

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestIsPublic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation *huma.Operation
		want      bool
	}{
		{
			name:      "nil operation is protected",
			operation: nil,
			want:      false,
		},
		{
			name:      "operation without metadata is protected",
			operation: &huma.Operation{},
			want:      false,
		},
		{
			name: "wrong type is protected",
			operation: &huma.Operation{
				Metadata: map[string]any{auth.MetadataKey: "public"},
			},
			want: false,
		},
		{
			name: "explicit non-public policy is protected",
			operation: &huma.Operation{
				Metadata: map[string]any{auth.MetadataKey: auth.Policy{}},
			},
			want: false,
		},
		{
			name:      "public policy",
			operation: &huma.Operation{Metadata: auth.Public()},
			want:      true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, auth.IsPublic(tt.operation))
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := auth.PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{AccountID: 4, Username: "alice"})

	p, ok := auth.PrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(4), p.AccountID)
	assert.Equal(t, "alice", p.Username)
}
