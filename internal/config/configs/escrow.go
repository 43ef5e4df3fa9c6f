package configs

import "github.com/ethereum/go-ethereum/common"

// Escrow carries the immutable deployment parameters of the escrow: the
// stablecoin token, the escrow custody account, the lending pool (yield mode
// only) and the custody mode itself. Addresses are parsed from hex by the env
// library via common.Address's TextUnmarshaler.
type Escrow struct {
	// TokenAddress is the stablecoin contract the escrow settles in.
	TokenAddress common.Address `env:"TOKEN_ADDRESS" envDefault:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	// AccountAddress is the escrow's own custody account.
	AccountAddress common.Address `env:"ACCOUNT_ADDRESS" envDefault:"0x000000000000000000000000000000000000e5c0"`
	// LendingPoolAddress identifies the yield custody pool. Only read when
	// CustodyMode is "yield".
	LendingPoolAddress common.Address `env:"LENDING_POOL_ADDRESS" envDefault:"0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2"`
	// CustodyMode selects where contributed funds reside: "raw" keeps them
	// on the escrow account, "yield" forwards them to the lending pool and
	// mints contribution receipts.
	CustodyMode string `env:"CUSTODY_MODE" envDefault:"raw"`
	// Store selects the ledger backend: "postgres" or "memory".
	Store string `env:"STORE" envDefault:"postgres"`
	// SeedDemo funds demo accounts and creates demo campaigns on startup.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}
