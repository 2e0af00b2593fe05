package domain

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApprovalStatus(t *testing.T) {
	t.Parallel()

	all := NewApprovalStatus(map[string]bool{"a": true, "b": true}, map[string]bool{"c": true})
	assert.True(t, all.AllApproved)
	assert.Empty(t, all.Missing())

	one := NewApprovalStatus(map[string]bool{"a": true, "b": false}, map[string]bool{"c": true})
	assert.False(t, one.AllApproved)
	assert.Equal(t, []string{"usdc:b"}, one.Missing())

	outcome := NewApprovalStatus(map[string]bool{"a": true}, map[string]bool{"d": false, "c": false})
	assert.False(t, outcome.AllApproved)
	assert.Equal(t, []string{"outcome:c", "outcome:d"}, outcome.Missing())
}

func TestSafeTransaction_JSON(t *testing.T) {
	t.Parallel()

	tx := SafeTransaction{
		To:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		Operation: OperationCall,
		Data:      []byte{0x09, 0x5e, 0xa7, 0xb3},
		Value:     "0",
	}

	b, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"to":"0x2791bca1f2de4661ed88a30c99a7a9449aa84174","operation":0,"data":"0x095ea7b3","value":"0"}`,
		string(b),
	)

	var back SafeTransaction
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tx, back)
}

func TestOperationType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "call", OperationCall.String())
	assert.Equal(t, "delegatecall", OperationDelegateCall.String())
	assert.Equal(t, "unknown", OperationType(9).String())
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantErr bool
	}{
		{name: "checksummed", give: "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"},
		{name: "lowercase with spaces", give: "  0x4bfb41d5b3570defd03c39a9a4d8de6bd8b8982e "},
		{name: "too short", give: "0x1234", wantErr: true},
		{name: "not hex", give: "safe", wantErr: true},
		{name: "zero address", give: "0x0000000000000000000000000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAddress(tt.give)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"), got)
		})
	}
}
