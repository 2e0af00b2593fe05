package approvals

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyapprove/internal/domain"
)

// DefaultMinAllowance is the USDC allowance (in 6-decimal base units, i.e.
// one million USDC) at or above which a spender counts as approved.
var DefaultMinAllowance = big.NewInt(1_000_000_000_000)

// ChainReader reads the on-chain approval state. polygon.Client implements it.
type ChainReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	IsApprovedForAll(ctx context.Context, token, account, operator common.Address) (bool, error)
}

// Checker queries the approval state of a Safe against every known spender.
type Checker struct {
	reader       ChainReader
	contracts    Contracts
	minAllowance *big.Int
	logger       *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithMinAllowance overrides DefaultMinAllowance.
func WithMinAllowance(v *big.Int) Option {
	return func(c *Checker) {
		if v != nil {
			c.minAllowance = new(big.Int).Set(v)
		}
	}
}

// WithLogger sets the logger used for failed reads.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChecker creates a Checker reading through reader.
func NewChecker(reader ChainReader, contracts Contracts, opts ...Option) *Checker {
	c := &Checker{
		reader:       reader,
		contracts:    contracts,
		minAllowance: new(big.Int).Set(DefaultMinAllowance),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "approvals"))
	return c
}

// Contracts returns the addresses the checker was built with.
func (c *Checker) Contracts() Contracts {
	return c.contracts
}

// CheckUSDCAllowance reports whether safe has approved at least the minimum
// allowance for spender. Read failures are logged and reported as false.
func (c *Checker) CheckUSDCAllowance(ctx context.Context, safe common.Address, spender domain.Spender) bool {
	allowance, err := c.reader.Allowance(ctx, c.contracts.USDC, safe, spender.Address)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to check USDC approval",
			slog.String("spender", spender.Name),
			slog.String("address", spender.Address.Hex()),
			slog.String("error", err.Error()),
		)
		return false
	}
	return allowance.Cmp(c.minAllowance) >= 0
}

// CheckOutcomeTokenApproval reports whether spender is an approved operator
// for safe's CTF tokens. Read failures are logged and reported as false.
func (c *Checker) CheckOutcomeTokenApproval(ctx context.Context, safe common.Address, spender domain.Spender) bool {
	approved, err := c.reader.IsApprovedForAll(ctx, c.contracts.CTF, safe, spender.Address)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to check ERC1155 approval",
			slog.String("spender", spender.Name),
			slog.String("address", spender.Address.Hex()),
			slog.String("error", err.Error()),
		)
		return false
	}
	return approved
}

// CheckAll checks every USDC spender concurrently, then every outcome token
// spender concurrently, and aggregates the results. It never fails: spenders
// whose state could not be read are reported as not approved.
func (c *Checker) CheckAll(ctx context.Context, safe common.Address) domain.ApprovalStatus {
	usdc := c.checkBatch(ctx, safe, c.contracts.USDCSpenders(), c.CheckUSDCAllowance)
	outcome := c.checkBatch(ctx, safe, c.contracts.OutcomeTokenSpenders(), c.CheckOutcomeTokenApproval)

	status := domain.NewApprovalStatus(usdc, outcome)
	c.logger.DebugContext(ctx, "approvals checked",
		slog.String("safe", safe.Hex()),
		slog.Bool("all_approved", status.AllApproved),
	)
	return status
}

type checkFunc func(ctx context.Context, safe common.Address, spender domain.Spender) bool

// checkBatch runs check for every spender in parallel. Each goroutine owns one
// slot of results, so the map is only built after all of them return.
func (c *Checker) checkBatch(ctx context.Context, safe common.Address, spenders []domain.Spender, check checkFunc) map[string]bool {
	results := make([]bool, len(spenders))

	var g errgroup.Group
	for i, sp := range spenders {
		g.Go(func() error {
			results[i] = check(ctx, safe, sp)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]bool, len(spenders))
	for i, sp := range spenders {
		out[sp.Name] = results[i]
	}
	return out
}
