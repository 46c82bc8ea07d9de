package model

import "encoding/json"

// EventRecord is the normalized representation of a pool event for storage.
// One flat shape covers all three kinds; amount fields are decimal strings
// and unused fields are omitted.
type EventRecord struct {
	Seq           uint64 `json:"seq"`
	Kind          string `json:"kind"`
	Account       string `json:"account"`
	Amount1       string `json:"amount1,omitempty"`
	Amount2       string `json:"amount2,omitempty"`
	Shares        string `json:"shares,omitempty"`
	Direction     string `json:"direction,omitempty"`
	AmountIn      string `json:"amount_in,omitempty"`
	AmountOut     string `json:"amount_out,omitempty"`
	Reserve1After string `json:"reserve1_after,omitempty"`
	Reserve2After string `json:"reserve2_after,omitempty"`
	Timestamp     uint64 `json:"timestamp,omitempty"`
	AppliedAt     string `json:"applied_at"`
}

// MarshalJSON ensures EventRecord is encoded with stable field names.
func (er EventRecord) MarshalJSON() ([]byte, error) {
	type Alias EventRecord
	return json.Marshal(Alias(er))
}

// UnmarshalJSON decodes an EventRecord from JSON.
func (er *EventRecord) UnmarshalJSON(data []byte) error {
	type Alias EventRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*er = EventRecord(a)
	return nil
}
