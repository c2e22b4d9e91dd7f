package types

const (
	// Zero address, used as the "no recipient" placeholder
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// Market outcomes
	YES = "YES"
	NO  = "NO"

	// Wallet kinds
	WalletKindEOA          = "eoa"
	WalletKindSmartAccount = "smart-account"
)

// USDCDecimals is the minor-unit precision of the collateral asset. The
// balance selector's flooring and the minor-unit conversion helpers all
// assume this precision.
const USDCDecimals = 6
