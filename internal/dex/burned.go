package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pricescope/internal/model"
)

const percentScale = 4

var burnAddresses = []common.Address{
	common.HexToAddress("0x000000000000000000000000000000000000dEaD"),
	common.HexToAddress("0x0000000000000000000000000000000000000000"),
}

// FetchBurnedSupply reads totalSupply and the balances held on the
// canonical burn addresses, and reports the burned share of supply.
func FetchBurnedSupply(ctx context.Context, caller Caller, token string, logger *zap.Logger) (model.BurnedSupply, error) {
	if caller == nil {
		return model.BurnedSupply{}, fmt.Errorf("caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !common.IsHexAddress(token) {
		return model.BurnedSupply{}, fmt.Errorf("invalid token address: %s", token)
	}
	tokenAddr := common.HexToAddress(token)

	tokenABI, err := erc20ABIInstance()
	if err != nil {
		return model.BurnedSupply{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	values, err := callMethod(ctx, caller, tokenAddr.Hex(), tokenABI, "totalSupply")
	if err != nil {
		return model.BurnedSupply{}, err
	}
	total, ok := values[0].(*big.Int)
	if !ok {
		return model.BurnedSupply{}, fmt.Errorf("totalSupply unexpected type %T", values[0])
	}

	burned := new(big.Int)
	for _, burnAddr := range burnAddresses {
		values, err := callMethod(ctx, caller, tokenAddr.Hex(), tokenABI, "balanceOf", burnAddr)
		if err != nil {
			logger.Warn("balanceOf failed", zap.String("holder", burnAddr.Hex()), zap.Error(err))
			continue
		}
		balance, ok := values[0].(*big.Int)
		if !ok {
			logger.Warn("balanceOf unexpected type", zap.String("holder", burnAddr.Hex()))
			continue
		}
		burned.Add(burned, balance)
	}

	return model.BurnedSupply{
		Token:       tokenAddr.Hex(),
		TotalSupply: total.String(),
		Burned:      burned.String(),
		Percent:     burnedPercent(burned, total),
	}, nil
}

func burnedPercent(burned, total *big.Int) string {
	if total == nil || total.Sign() == 0 {
		return "0"
	}
	rat := new(big.Rat).SetFrac(new(big.Int).Mul(burned, big.NewInt(100)), total)
	return rat.FloatString(percentScale)
}
