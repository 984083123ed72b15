package model

// LogRecord is the normalized representation of a raw chain log as
// returned by the gateway.
type LogRecord struct {
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"transaction_hash"`
}

// LogPage is one page of logs for a contract address, newest first.
type LogPage struct {
	Items       []LogRecord `json:"items"`
	HasNextPage bool        `json:"has_next_page"`
}
