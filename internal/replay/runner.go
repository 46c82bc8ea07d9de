// Package replay applies an operation journal to a fresh pool ledger, the
// in-process stand-in for a host chain's serialized transaction stream.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ammledger/internal/amm"
	"ammledger/internal/model"
	"ammledger/internal/stats"
	"ammledger/internal/storage"
	"ammledger/internal/storage/postgres"
	"ammledger/internal/token"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	PoolName          string
	PoolAddress       common.Address
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner owns the pool for the duration of a replay: it rebuilds ledger state
// by applying every journal operation in sequence and persists the events of
// operations past the checkpoint.
type Runner struct {
	cfg        RunConfig
	token1     *token.Ledger
	token2     *token.Ledger
	pool       *amm.Pool
	events     storage.EventSink
	rejects    storage.RejectSink
	store      *postgres.Store
	logger     *zap.Logger
	checkpoint *CheckpointStore
	totals     *stats.Accumulator

	currentSeq       uint64
	persistedThrough uint64
	pendingEvents    []model.EventRecord
	pendingRejects   []model.RejectedOperation
}

// NewRunner builds a Runner and the pool it drives. The store is optional;
// a nil store skips Postgres persistence.
func NewRunner(cfg RunConfig, token1, token2 *token.Ledger, events storage.EventSink, rejects storage.RejectSink, store *postgres.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := &Runner{
		cfg:        cfg,
		token1:     token1,
		token2:     token2,
		events:     events,
		rejects:    rejects,
		store:      store,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		totals:     stats.NewAccumulator(cfg.PoolName),
	}
	custody1 := token.NewCustody(token1, cfg.PoolAddress)
	custody2 := token.NewCustody(token2, cfg.PoolAddress)
	runner.pool = amm.NewPool(custody1, custody2, amm.SinkFunc(runner.onEvent))
	return runner
}

// Pool exposes the replayed pool for post-run inspection.
func (r *Runner) Pool() *amm.Pool { return r.pool }

// Totals exposes the running aggregates collected during the replay.
func (r *Runner) Totals() *stats.Accumulator { return r.totals }

// Run replays the operations JSONL at inputPath. Every operation is applied
// to rebuild ledger state; events are persisted only past the checkpoint, so
// a resumed run never writes an event twice. Rejected operations are logged
// and recorded, never fatal.
func (r *Runner) Run(ctx context.Context, inputPath string) error {
	if r.token1 == nil || r.token2 == nil {
		return fmt.Errorf("token ledgers are nil")
	}
	if r.events == nil {
		return fmt.Errorf("event sink is nil")
	}
	if r.cfg.BatchSize <= 0 {
		r.cfg.BatchSize = 1000
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			r.persistedThrough = cp.LastAppliedSeq
			r.logger.Info("resume from checkpoint", zap.Uint64("last_applied_seq", cp.LastAppliedSeq))
		}
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, rejected, skipped, failed int
	var lastSeq uint64

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.OperationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode operation", zap.Error(err))
			continue
		}

		if record.Seq <= lastSeq {
			skipped++
			r.logger.Warn("out-of-order operation skipped", zap.Uint64("seq", record.Seq), zap.Uint64("last_seq", lastSeq))
			continue
		}
		lastSeq = record.Seq
		r.currentSeq = record.Seq

		if err := r.applyOperation(record); err != nil {
			rejected++
			r.logger.Warn("operation rejected",
				zap.Uint64("seq", record.Seq),
				zap.String("op", record.Op),
				zap.String("caller", record.Caller),
				zap.Error(err),
			)
			if record.Seq > r.persistedThrough {
				r.pendingRejects = append(r.pendingRejects, model.RejectedOperation{
					Seq:    record.Seq,
					Op:     record.Op,
					Caller: record.Caller,
					Error:  err.Error(),
				})
			}
			continue
		}
		applied++

		if len(r.pendingEvents) >= r.cfg.BatchSize {
			if err := r.flush(ctx, lastSeq); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if err := r.flush(ctx, lastSeq); err != nil {
		return err
	}

	r.logger.Info("replay complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("rejected", rejected),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.String("reserve1", r.pool.Reserve1().String()),
		zap.String("reserve2", r.pool.Reserve2().String()),
		zap.String("total_shares", r.pool.TotalShares().String()),
		zap.Uint64("swap_count", r.totals.SwapCount),
		zap.String("volume_in_1", r.totals.VolumeIn1.String()),
		zap.String("volume_in_2", r.totals.VolumeIn2.String()),
	)

	return nil
}

func (r *Runner) applyOperation(record model.OperationRecord) error {
	caller, err := parseAddress(record.Caller)
	if err != nil {
		return err
	}

	switch record.Op {
	case model.OpMint:
		ledger, err := r.assetLedger(record.Asset)
		if err != nil {
			return err
		}
		amount, err := parseAmount(record.Amount)
		if err != nil {
			return err
		}
		return ledger.Mint(caller, amount)

	case model.OpApprove:
		ledger, err := r.assetLedger(record.Asset)
		if err != nil {
			return err
		}
		amount, err := parseAmount(record.Amount)
		if err != nil {
			return err
		}
		return ledger.Approve(caller, r.cfg.PoolAddress, amount)

	case model.OpAddLiquidity:
		amount1, err := parseAmount(record.Amount1)
		if err != nil {
			return err
		}
		amount2, err := parseAmount(record.Amount2)
		if err != nil {
			return err
		}
		_, err = r.pool.AddLiquidity(caller, amount1, amount2)
		return err

	case model.OpRemoveLiquidity:
		shareAmount, err := parseAmount(record.ShareAmount)
		if err != nil {
			return err
		}
		_, _, err = r.pool.RemoveLiquidity(caller, shareAmount)
		return err

	case model.OpSwap:
		direction, err := amm.ParseDirection(record.Direction)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount(record.AmountIn)
		if err != nil {
			return err
		}
		var minOut *big.Int
		if record.MinAmountOut != "" {
			minOut, err = parseAmount(record.MinAmountOut)
			if err != nil {
				return err
			}
		}
		_, err = r.pool.Swap(caller, direction, amountIn, minOut)
		return err

	default:
		return fmt.Errorf("unknown op: %q", record.Op)
	}
}

func (r *Runner) assetLedger(asset int) (*token.Ledger, error) {
	switch asset {
	case 1:
		return r.token1, nil
	case 2:
		return r.token2, nil
	default:
		return nil, fmt.Errorf("unknown asset index: %d", asset)
	}
}

func (r *Runner) onEvent(event amm.Event) {
	r.totals.AddEvent(event)
	if r.currentSeq <= r.persistedThrough {
		return
	}

	record := model.EventRecord{
		Seq:       r.currentSeq,
		Kind:      event.Kind(),
		AppliedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	switch typed := event.(type) {
	case amm.LiquidityAdded:
		record.Account = typed.Provider.Hex()
		record.Amount1 = typed.Amount1.String()
		record.Amount2 = typed.Amount2.String()
		record.Shares = typed.SharesMinted.String()
	case amm.LiquidityRemoved:
		record.Account = typed.Provider.Hex()
		record.Amount1 = typed.Amount1.String()
		record.Amount2 = typed.Amount2.String()
		record.Shares = typed.SharesBurned.String()
	case amm.Swap:
		record.Account = typed.Trader.Hex()
		record.Direction = typed.Direction.String()
		record.AmountIn = typed.AmountIn.String()
		record.AmountOut = typed.AmountOut.String()
		record.Reserve1After = typed.Reserve1After.String()
		record.Reserve2After = typed.Reserve2After.String()
		record.Timestamp = typed.Timestamp
	}

	r.pendingEvents = append(r.pendingEvents, record)
}

func (r *Runner) flush(ctx context.Context, lastSeq uint64) error {
	if len(r.pendingEvents) > 0 {
		if err := r.events.PutEventBatch(r.pendingEvents); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}
	if len(r.pendingRejects) > 0 && r.rejects != nil {
		if err := r.rejects.PutRejectedBatch(r.pendingRejects); err != nil {
			return fmt.Errorf("store rejected: %w", err)
		}
	}

	if r.store != nil {
		events := r.pendingEvents
		state := r.snapshot(lastSeq)
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			if len(events) > 0 {
				if err := r.store.PutEventBatch(ctx, r.cfg.PoolName, events); err != nil {
					r.logger.Warn("pg event batch failed", zap.Error(err))
					return err
				}
			}
			if err := r.store.UpsertPoolState(ctx, state); err != nil {
				r.logger.Warn("pg snapshot failed", zap.Error(err))
				return err
			}
			return r.store.SaveState(ctx, r.cfg.PoolName, lastSeq)
		})
		if err != nil {
			return fmt.Errorf("persist to postgres: %w", err)
		}
	}

	r.pendingEvents = r.pendingEvents[:0]
	r.pendingRejects = r.pendingRejects[:0]

	if r.checkpoint != nil && lastSeq > 0 {
		if err := r.checkpoint.Save(lastSeq); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) snapshot(lastSeq uint64) model.PoolState {
	state := r.pool.State()
	holders := make([]model.HolderShare, 0, len(state.Shares))
	for holder, held := range state.Shares {
		holders = append(holders, model.HolderShare{Address: holder.Hex(), Shares: held.String()})
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Address < holders[j].Address })
	return model.PoolState{
		Name:        r.cfg.PoolName,
		Asset1:      r.token1.Symbol(),
		Asset2:      r.token2.Symbol(),
		Reserve1:    state.Reserve1.String(),
		Reserve2:    state.Reserve2.String(),
		TotalShares: state.TotalShares.String(),
		Holders:     holders,
		LastSeq:     lastSeq,
	}
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid address: %q", value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("amount is required")
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", value)
	}
	return amount, nil
}
