package storage

import "ammledger/internal/model"

// EventSink is a sink for applied pool events.
type EventSink interface {
	PutEventBatch(events []model.EventRecord) error
}

// RejectSink is a sink for operations the ledger refused.
type RejectSink interface {
	PutRejectedBatch(rejected []model.RejectedOperation) error
}
