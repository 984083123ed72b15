package model

import "math/big"

// ReserveSyncEvent is a decoded AMM reserve-sync log. Reserves are the
// raw on-chain values before decimal adjustment. TimestampMs stays zero
// until the block timestamp is resolved.
type ReserveSyncEvent struct {
	BlockNumber uint64
	TxHash      string
	Reserve0    *big.Int
	Reserve1    *big.Int
	TimestampMs int64
}
