package handlers

import (
	"testing"

	"shardctl/domain"
	"shardctl/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAddInstanceRequest(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "ipv4", address: "10.0.0.1:7000"},
		{name: "ipv6", address: "[fd00::1]:7000"},
		{name: "ipv4 mapped ipv6", address: "[::ffff:10.0.0.1]:7000"},
		{name: "hostname", address: "kv-1.internal:7000", wantErr: true},
		{name: "empty", address: "", wantErr: true},
		{name: "no port", address: "10.0.0.1", wantErr: true},
		{name: "empty host", address: ":7000", wantErr: true},
		{name: "empty port", address: "10.0.0.1:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromAddInstanceRequest(AddInstanceRequest{Address: tt.address})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, service.IsBadParameterError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, got)
		})
	}
}

func TestToEventResponse(t *testing.T) {
	ev := domain.MembershipEvent{
		Kind:       domain.EventUnreachable,
		Version:    7,
		ShardCount: 4,
		Instance:   domain.ShardInstance{ShardIndex: 2, Address: "10.0.0.3:7000", Health: domain.HealthUnreachable, Generation: 4},
	}
	assert.Equal(t, EventResponse{
		Kind:       "unreachable",
		Version:    7,
		ShardCount: 4,
		Instance:   Instance{ShardIndex: 2, Address: "10.0.0.3:7000", Health: "unreachable", Generation: 4},
	}, toEventResponse(ev))
}

func TestToTableResponse(t *testing.T) {
	op := newOperator(t)
	op.StateFunc = func() domain.ControllerState { return domain.StateDraining }

	resp := toTableResponse(op)
	assert.Equal(t, "kv", resp.ServiceId)
	assert.Equal(t, "draining", resp.State)
	assert.Equal(t, uint32(4), resp.ShardCount)
	require.Len(t, resp.Instances, 4)
	for i, inst := range resp.Instances {
		assert.Equal(t, uint32(i), inst.ShardIndex)
		assert.Equal(t, "active", inst.Health)
	}
}
