package model

// RejectedOperation records a journal operation the ledger refused.
type RejectedOperation struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Caller string `json:"caller"`
	Error  string `json:"error"`
}
