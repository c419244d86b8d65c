package usecases

// Log messages and metric labels shared by the custody usecases
const (
	SupplyOpMint = "mint"
	SupplyOpBurn = "burn"
)

// Listing defaults
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// EIP-191 signatures carry a recovery id of 27 or 28.
const legacyRecoveryOffset = 27
