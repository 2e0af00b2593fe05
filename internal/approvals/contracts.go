// Package approvals checks whether a Polymarket Safe has granted the token
// permissions trading requires, and builds the Safe transactions that grant
// them.
package approvals

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyapprove/internal/domain"
	"github.com/alanyoungcy/polyapprove/internal/platform/polygon"
)

// Spender names as reported in ApprovalStatus maps.
const (
	NameCTFContract        = "CTF Contract"
	NameNegRiskAdapter     = "Neg Risk Adapter"
	NameCTFExchange        = "CTF Exchange"
	NameNegRiskCTFExchange = "Neg Risk CTF Exchange"
	NameNegRiskExchange    = "Neg Risk Exchange"
)

// Contracts is the fixed set of addresses the approvals are checked and
// granted against. A Contracts value is built once at startup and treated as
// immutable.
type Contracts struct {
	USDC               common.Address
	CTF                common.Address
	CTFExchange        common.Address
	NegRiskCTFExchange common.Address
	NegRiskAdapter     common.Address
}

// DefaultContracts returns the Polygon mainnet deployment.
func DefaultContracts() Contracts {
	return Contracts{
		USDC:               common.HexToAddress(polygon.USDCeAddress),
		CTF:                common.HexToAddress(polygon.ConditionalTokensAddress),
		CTFExchange:        common.HexToAddress(polygon.CTFExchangeAddress),
		NegRiskCTFExchange: common.HexToAddress(polygon.NegRiskCTFExchangeAddress),
		NegRiskAdapter:     common.HexToAddress(polygon.NegRiskAdapterAddress),
	}
}

// USDCSpenders returns the contracts that pull USDC from the Safe, in the
// order their approvals are checked and built.
func (c Contracts) USDCSpenders() []domain.Spender {
	return []domain.Spender{
		{Address: c.CTF, Name: NameCTFContract},
		{Address: c.NegRiskAdapter, Name: NameNegRiskAdapter},
		{Address: c.CTFExchange, Name: NameCTFExchange},
		{Address: c.NegRiskCTFExchange, Name: NameNegRiskCTFExchange},
	}
}

// OutcomeTokenSpenders returns the operators that move the Safe's CTF outcome
// tokens.
func (c Contracts) OutcomeTokenSpenders() []domain.Spender {
	return []domain.Spender{
		{Address: c.CTFExchange, Name: NameCTFExchange},
		{Address: c.NegRiskCTFExchange, Name: NameNegRiskExchange},
		{Address: c.NegRiskAdapter, Name: NameNegRiskAdapter},
	}
}
