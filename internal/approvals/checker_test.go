package approvals

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyapprove/internal/platform/polygon"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, owner, spender)
	v, _ := args.Get(0).(*big.Int)
	return v, args.Error(1)
}

func (m *mockReader) IsApprovedForAll(ctx context.Context, token, account, operator common.Address) (bool, error) {
	args := m.Called(ctx, token, account, operator)
	return args.Bool(0), args.Error(1)
}

var testSafe = common.HexToAddress("0x1111111111111111111111111111111111111111")

// approveEverything registers successful reads for every spender.
func approveEverything(r *mockReader, contracts Contracts) {
	for _, sp := range contracts.USDCSpenders() {
		r.On("Allowance", mock.Anything, contracts.USDC, testSafe, sp.Address).
			Return(polygon.MaxUint256(), nil).Maybe()
	}
	for _, sp := range contracts.OutcomeTokenSpenders() {
		r.On("IsApprovedForAll", mock.Anything, contracts.CTF, testSafe, sp.Address).
			Return(true, nil).Maybe()
	}
}

func TestChecker_CheckAll(t *testing.T) {
	t.Parallel()

	contracts := DefaultContracts()

	tests := []struct {
		name        string
		beforeFunc  func(r *mockReader)
		wantAll     bool
		wantUSDC    map[string]bool
		wantOutcome map[string]bool
	}{
		{
			name:    "everything approved",
			wantAll: true,
			wantUSDC: map[string]bool{
				NameCTFContract: true, NameNegRiskAdapter: true,
				NameCTFExchange: true, NameNegRiskCTFExchange: true,
			},
			wantOutcome: map[string]bool{
				NameCTFExchange: true, NameNegRiskExchange: true, NameNegRiskAdapter: true,
			},
		},
		{
			name: "allowance below threshold",
			beforeFunc: func(r *mockReader) {
				r.On("Allowance", mock.Anything, contracts.USDC, testSafe, contracts.NegRiskAdapter).
					Return(big.NewInt(5_000_000), nil).Once()
			},
			wantAll: false,
			wantUSDC: map[string]bool{
				NameCTFContract: true, NameNegRiskAdapter: false,
				NameCTFExchange: true, NameNegRiskCTFExchange: true,
			},
			wantOutcome: map[string]bool{
				NameCTFExchange: true, NameNegRiskExchange: true, NameNegRiskAdapter: true,
			},
		},
		{
			name: "operator not approved",
			beforeFunc: func(r *mockReader) {
				r.On("IsApprovedForAll", mock.Anything, contracts.CTF, testSafe, contracts.NegRiskCTFExchange).
					Return(false, nil).Once()
			},
			wantAll: false,
			wantUSDC: map[string]bool{
				NameCTFContract: true, NameNegRiskAdapter: true,
				NameCTFExchange: true, NameNegRiskCTFExchange: true,
			},
			wantOutcome: map[string]bool{
				NameCTFExchange: true, NameNegRiskExchange: false, NameNegRiskAdapter: true,
			},
		},
		{
			name: "read failures are reported as not approved",
			beforeFunc: func(r *mockReader) {
				r.On("Allowance", mock.Anything, contracts.USDC, testSafe, contracts.CTF).
					Return(nil, errors.New("rpc timeout")).Once()
				r.On("IsApprovedForAll", mock.Anything, contracts.CTF, testSafe, contracts.CTFExchange).
					Return(false, errors.New("connection reset")).Once()
			},
			wantAll: false,
			wantUSDC: map[string]bool{
				NameCTFContract: false, NameNegRiskAdapter: true,
				NameCTFExchange: true, NameNegRiskCTFExchange: true,
			},
			wantOutcome: map[string]bool{
				NameCTFExchange: false, NameNegRiskExchange: true, NameNegRiskAdapter: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &mockReader{}
			// Specific expectations must be registered before the catch-all
			// ones so that testify matches them first.
			if tt.beforeFunc != nil {
				tt.beforeFunc(r)
			}
			approveEverything(r, contracts)

			checker := NewChecker(r, contracts, WithLogger(slog.New(slog.DiscardHandler)))
			got := checker.CheckAll(context.Background(), testSafe)

			assert.Equal(t, tt.wantAll, got.AllApproved)
			assert.Equal(t, tt.wantUSDC, got.USDCApprovals)
			assert.Equal(t, tt.wantOutcome, got.OutcomeTokenApprovals)
		})
	}
}

func TestChecker_CheckAll_KeySets(t *testing.T) {
	t.Parallel()

	contracts := DefaultContracts()
	r := &mockReader{}
	r.On("Allowance", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))
	r.On("IsApprovedForAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("down"))

	got := NewChecker(r, contracts, WithLogger(slog.New(slog.DiscardHandler))).
		CheckAll(context.Background(), testSafe)

	require.Len(t, got.USDCApprovals, 4)
	require.Len(t, got.OutcomeTokenApprovals, 3)
	for _, sp := range contracts.USDCSpenders() {
		v, ok := got.USDCApprovals[sp.Name]
		assert.True(t, ok, sp.Name)
		assert.False(t, v, sp.Name)
	}
	for _, sp := range contracts.OutcomeTokenSpenders() {
		v, ok := got.OutcomeTokenApprovals[sp.Name]
		assert.True(t, ok, sp.Name)
		assert.False(t, v, sp.Name)
	}
	assert.False(t, got.AllApproved)
	r.AssertNumberOfCalls(t, "Allowance", 4)
	r.AssertNumberOfCalls(t, "IsApprovedForAll", 3)
}

func TestChecker_CheckUSDCAllowance_Threshold(t *testing.T) {
	t.Parallel()

	contracts := DefaultContracts()
	spender := contracts.USDCSpenders()[0]

	tests := []struct {
		name   string
		opts   []Option
		give   *big.Int
		wantOK bool
	}{
		{name: "exactly the default minimum", give: big.NewInt(1_000_000_000_000), wantOK: true},
		{name: "one below the default minimum", give: big.NewInt(999_999_999_999), wantOK: false},
		{name: "zero", give: big.NewInt(0), wantOK: false},
		{name: "max uint256", give: polygon.MaxUint256(), wantOK: true},
		{
			name:   "custom minimum",
			opts:   []Option{WithMinAllowance(big.NewInt(10))},
			give:   big.NewInt(10),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &mockReader{}
			r.On("Allowance", mock.Anything, contracts.USDC, testSafe, spender.Address).Return(tt.give, nil)

			opts := append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, tt.opts...)
			got := NewChecker(r, contracts, opts...).CheckUSDCAllowance(context.Background(), testSafe, spender)
			assert.Equal(t, tt.wantOK, got)
		})
	}
}

func TestChecker_LogsFailedReads(t *testing.T) {
	t.Parallel()

	contracts := DefaultContracts()
	spender := contracts.OutcomeTokenSpenders()[1]

	r := &mockReader{}
	r.On("IsApprovedForAll", mock.Anything, contracts.CTF, testSafe, spender.Address).
		Return(false, errors.New("429 too many requests"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ok := NewChecker(r, contracts, WithLogger(logger)).CheckOutcomeTokenApproval(context.Background(), testSafe, spender)
	assert.False(t, ok)

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, NameNegRiskExchange)
	assert.Contains(t, out, "429 too many requests")
}
