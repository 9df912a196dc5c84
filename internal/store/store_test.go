package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajmarsh/hexfront/internal/protocol"
)

func TestRecordMatchLifecycle(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	settings := protocol.SettingsInfo{Difficulty: "normal", MapRadius: 5, RunLengthMinutes: 45}
	roster := []protocol.PlayerInfo{
		{ID: "p1", Name: "Ada", IsHost: true, Status: "READY"},
		{ID: "p2", Name: "Lin", Status: "READY"},
	}

	require.NoError(t, s.RecordMatchStart("LOBBY1", 1234, settings, roster))

	records, err := s.MatchesForLobby("LOBBY1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(1234), records[0].Seed)
	require.Nil(t, records[0].EndedAt)

	require.NoError(t, s.RecordMatchEnd("LOBBY1", 12, "too few players"))

	records, err = s.MatchesForLobby("LOBBY1")
	require.NoError(t, err)
	require.NotNil(t, records[0].EndedAt)
	require.Equal(t, int64(12), *records[0].Turns)
	require.Equal(t, "too few players", *records[0].EndReason)
}
