package model

// BurnedSupply reports how much of a token's supply sits on the
// canonical burn addresses. Amounts are raw decimal strings, Percent is
// a fixed-point percentage string.
type BurnedSupply struct {
	Token       string `json:"token"`
	TotalSupply string `json:"total_supply"`
	Burned      string `json:"burned"`
	Percent     string `json:"percent"`
}
