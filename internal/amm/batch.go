package amm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// BulkSwapForward applies every X to Y swap in order as one unit of work.
func (e *Engine) BulkSwapForward(ctx context.Context, caller common.Address, reqs []SwapRequest) ([]SwapResult, error) {
	return e.bulkSwap(ctx, "bulk-swap-forward", caller, XToY, reqs)
}

// BulkSwapBackward applies every Y to X swap in order as one unit of work.
func (e *Engine) BulkSwapBackward(ctx context.Context, caller common.Address, reqs []SwapRequest) ([]SwapResult, error) {
	return e.bulkSwap(ctx, "bulk-swap-backward", caller, YToX, reqs)
}

// BulkAddLiquidity applies every deposit in order as one unit of work.
func (e *Engine) BulkAddLiquidity(ctx context.Context, caller common.Address, reqs []AddRequest) ([]LiquidityResult, error) {
	const op = "bulk-add-liquidity"
	if err := e.checkBatch(op, len(reqs), e.cfg.MaxLiquidityBatch); err != nil {
		return nil, err
	}
	return runBatch(ctx, e, op, reqs, func(u *unit, req AddRequest) (LiquidityResult, error) {
		return e.addLiquidity(u, caller, req)
	})
}

// BulkRemoveLiquidity applies every redemption in order as one unit of work.
func (e *Engine) BulkRemoveLiquidity(ctx context.Context, caller common.Address, reqs []RemoveRequest) ([]LiquidityResult, error) {
	const op = "bulk-remove-liquidity"
	if err := e.checkBatch(op, len(reqs), e.cfg.MaxLiquidityBatch); err != nil {
		return nil, err
	}
	return runBatch(ctx, e, op, reqs, func(u *unit, req RemoveRequest) (LiquidityResult, error) {
		return e.removeLiquidity(u, caller, req)
	})
}

func (e *Engine) bulkSwap(ctx context.Context, op string, caller common.Address, dir Direction, reqs []SwapRequest) ([]SwapResult, error) {
	if err := e.checkBatch(op, len(reqs), e.cfg.MaxSwapBatch); err != nil {
		return nil, err
	}
	return runBatch(ctx, e, op, reqs, func(u *unit, req SwapRequest) (SwapResult, error) {
		return e.swap(u, caller, dir, req)
	})
}

// checkBatch rejects empty and oversized batches before any state is read.
func (e *Engine) checkBatch(op string, n, limit int) error {
	var err error
	switch {
	case n == 0:
		err = fmt.Errorf("%w: empty batch", ErrZeroInput)
	case n > limit:
		err = fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, n, limit)
	default:
		return nil
	}
	e.reject(op, err)
	return err
}

// runBatch applies each item in order inside a single unit of work. The first
// failing item aborts the whole batch and its error is returned wrapped.
func runBatch[Req, Res any](ctx context.Context, e *Engine, op string, reqs []Req, apply func(u *unit, req Req) (Res, error)) ([]Res, error) {
	out := make([]Res, 0, len(reqs))
	err := e.execute(ctx, op, len(reqs), func(u *unit) error {
		for i, req := range reqs {
			res, err := apply(u, req)
			if err != nil {
				return fmt.Errorf("%s item %d: %w", op, i, err)
			}
			out = append(out, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
