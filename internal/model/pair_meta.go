package model

// PairMeta captures immutable pair metadata fetched once per
// reconstruction run.
type PairMeta struct {
	Token0         string `json:"token0"`
	Token1         string `json:"token1"`
	Token0Decimals uint8  `json:"token0_decimals"`
	Token1Decimals uint8  `json:"token1_decimals"`
}
