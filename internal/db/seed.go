package db

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stablefund/internal/adapter/bank"
	"stablefund/internal/adapter/usecase"
)

// Seed creates demo campaigns and funds demo contributor accounts in the
// bank so the service is usable immediately after startup. Amounts are in
// the stablecoin's smallest unit (6 decimals assumed for display purposes).
func Seed(ctx context.Context, engine *usecase.EscrowUseCase, demoBank *bank.Bank) error {
	admin := common.HexToAddress("0x00000000000000000000000000000000000ad317")
	for i := 1; i <= 3; i++ {
		goal := int64(i) * 1_000_000
		if _, err := engine.CreateCampaign(ctx, admin, goal, time.Now().AddDate(0, 1, 0)); err != nil {
			return fmt.Errorf("seed campaign %d: %w", i, err)
		}
	}
	for i := int64(1); i <= 5; i++ {
		contributor := common.BigToAddress(big.NewInt(i))
		demoBank.Fund(contributor, 10_000_000)
	}
	return nil
}
