package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAskService)
	})

	t.Run("missing ask service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAskService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate_DefaultTopK(t *testing.T) {
	ports := &Ports{Ask: &mockAskService{}}

	require.NoError(t, ports.Validate())
	assert.Equal(t, domain.DefaultTopK, ports.DefaultTopK)

	ports = &Ports{Ask: &mockAskService{}, DefaultTopK: 7}
	require.NoError(t, ports.Validate())
	assert.Equal(t, 7, ports.DefaultTopK)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Ask: &mockAskService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, server.RunHTTP(ctx, "127.0.0.1:0"))
}
