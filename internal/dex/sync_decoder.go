package dex

import (
	"math/big"
	"strings"

	"pricescope/internal/model"
)

// SyncDecoder recognizes V2 pair Sync logs and extracts the reserve
// pair from the raw data blob.
type SyncDecoder struct {
	topic0 string
}

// NewSyncDecoder builds a Sync decoder with the event topic derived
// from the pair ABI.
func NewSyncDecoder() (*SyncDecoder, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return nil, err
	}
	return &SyncDecoder{topic0: strings.ToLower(pairABI.Events["Sync"].ID.Hex())}, nil
}

// CanDecode checks if the topic0 is the Sync event signature.
func (d *SyncDecoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	return strings.EqualFold(topic0, d.topic0)
}

// Decode extracts the reserves from a Sync log. A non-matching topic,
// empty data, or any parse failure yields ok=false, never an error.
func (d *SyncDecoder) Decode(log model.LogRecord) (model.ReserveSyncEvent, bool) {
	if len(log.Topics) == 0 || !d.CanDecode(log.Topics[0]) {
		return model.ReserveSyncEvent{}, false
	}

	data := strings.TrimPrefix(strings.TrimPrefix(log.Data, "0x"), "0X")
	if len(data) < 128 {
		return model.ReserveSyncEvent{}, false
	}

	// Two big-endian 32-byte words: reserve0 then reserve1.
	reserve0, ok := new(big.Int).SetString(data[:64], 16)
	if !ok {
		return model.ReserveSyncEvent{}, false
	}
	reserve1, ok := new(big.Int).SetString(data[64:128], 16)
	if !ok {
		return model.ReserveSyncEvent{}, false
	}

	return model.ReserveSyncEvent{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
	}, true
}
