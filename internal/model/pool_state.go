package model

// HolderShare is one liquidity provider's share balance.
type HolderShare struct {
	Address string `json:"address"`
	Shares  string `json:"shares"`
}

// PoolState is the externally observable pool snapshot.
type PoolState struct {
	Name        string        `json:"name"`
	Asset1      string        `json:"asset1"`
	Asset2      string        `json:"asset2"`
	Reserve1    string        `json:"reserve1"`
	Reserve2    string        `json:"reserve2"`
	TotalShares string        `json:"total_shares"`
	Holders     []HolderShare `json:"holders"`
	LastSeq     uint64        `json:"last_seq"`
}
