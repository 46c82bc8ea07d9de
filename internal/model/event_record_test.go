package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestEventRecordJSONRoundTrip(t *testing.T) {
	original := EventRecord{
		Seq:           42,
		Kind:          "swap",
		Account:       "0x1111111111111111111111111111111111111111",
		Direction:     "1->2",
		AmountIn:      "1000000000000000000",
		AmountOut:     "990099009900990099",
		Reserve1After: "101000000000000000000",
		Reserve2After: "99009900990099009901",
		Timestamp:     1700000000,
		AppliedAt:     "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded EventRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestEventRecordOmitsUnusedFields(t *testing.T) {
	record := EventRecord{
		Seq:       1,
		Kind:      "liquidity_added",
		Account:   "0x2222222222222222222222222222222222222222",
		Amount1:   "100000",
		Amount2:   "100000",
		Shares:    "100",
		AppliedAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{"direction", "amount_in", "amount_out", "reserve1_after", "reserve2_after", "timestamp"} {
		if strings.Contains(string(b), field) {
			t.Fatalf("field %q should be omitted: %s", field, b)
		}
	}
}
