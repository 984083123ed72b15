package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pricescope/internal/model"
)

// defaultDecimals is assumed when a token does not answer decimals().
const defaultDecimals = 18

// Caller executes a read-only contract call against the chain.
type Caller interface {
	EthCall(ctx context.Context, to string, data []byte) ([]byte, error)
}

// FetchPairMeta loads immutable pair metadata. token0/token1 failures
// are fatal, a failed decimals() call falls back to 18.
func FetchPairMeta(ctx context.Context, caller Caller, pair string, logger *zap.Logger) (model.PairMeta, error) {
	if caller == nil {
		return model.PairMeta{}, fmt.Errorf("caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !common.IsHexAddress(pair) {
		return model.PairMeta{}, fmt.Errorf("invalid pair address: %s", pair)
	}

	pairABI, err := V2PairABI()
	if err != nil {
		return model.PairMeta{}, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := callMethod(ctx, caller, pair, pairABI, "token0")
	if err != nil {
		return model.PairMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PairMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callMethod(ctx, caller, pair, pairABI, "token1")
	if err != nil {
		return model.PairMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PairMeta{}, fmt.Errorf("token1: %w", err)
	}

	return model.PairMeta{
		Token0:         token0.Hex(),
		Token1:         token1.Hex(),
		Token0Decimals: fetchDecimals(ctx, caller, token0, logger),
		Token1Decimals: fetchDecimals(ctx, caller, token1, logger),
	}, nil
}

func fetchDecimals(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) uint8 {
	tokenABI, err := erc20ABIInstance()
	if err != nil {
		logger.Warn("parse erc20 abi", zap.Error(err))
		return defaultDecimals
	}

	values, err := callMethod(ctx, caller, token.Hex(), tokenABI, "decimals")
	if err != nil {
		logger.Warn("decimals fetch failed, assuming 18", zap.String("token", token.Hex()), zap.Error(err))
		return defaultDecimals
	}

	decimals, err := asUint8(values[0])
	if err != nil {
		logger.Warn("decimals decode failed, assuming 18", zap.String("token", token.Hex()), zap.Error(err))
		return defaultDecimals
	}
	return decimals
}

func callMethod(ctx context.Context, caller Caller, to string, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.EthCall(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
