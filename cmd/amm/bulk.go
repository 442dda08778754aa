package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ammcore/internal/amm"
)

// Batch kinds accepted by the bulk command.
const (
	bulkSwapForward  = "swap-forward"
	bulkSwapBackward = "swap-backward"
	bulkAdd          = "add"
	bulkRemove       = "remove"
)

// bulkItem is one line of a bulk items file. Fields unused by the batch kind
// are ignored.
type bulkItem struct {
	Amount    string `json:"amount"`
	MinOut    string `json:"min_out"`
	Recipient string `json:"recipient"`
	Deadline  uint64 `json:"deadline"`
	AmountX   string `json:"amount_x"`
	AmountY   string `json:"amount_y"`
	MinShares string `json:"min_shares"`
	Shares    string `json:"shares"`
	MinX      string `json:"min_x"`
	MinY      string `json:"min_y"`
}

func newBulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <swap-forward|swap-backward|add|remove>",
		Short: "Run a list of operations as one all-or-nothing unit",
		Args:  cobra.ExactArgs(1),
		RunE:  runBulk,
	}
	cmd.Flags().String("caller", "", "account running every item")
	cmd.Flags().String("items", "", "JSON array of items")
	return cmd
}

func runBulk(cmd *cobra.Command, args []string) error {
	kind := args[0]
	caller, err := flagAddress(cmd, "caller", true)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("items")
	if path == "" {
		return fmt.Errorf("items path is required")
	}
	items, err := readBulkItems(path)
	if err != nil {
		return err
	}

	switch kind {
	case bulkSwapForward, bulkSwapBackward:
		reqs, err := swapRequests(items)
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
			run, decimals := s.engine.BulkSwapForward, s.cfg.DecimalsY
			if kind == bulkSwapBackward {
				run, decimals = s.engine.BulkSwapBackward, s.cfg.DecimalsX
			}
			results, err := run(ctx, caller, reqs)
			if err != nil {
				return nil, err
			}
			views := make([]swapView, 0, len(results))
			for _, res := range results {
				views = append(views, newSwapView(res, decimals))
			}
			return views, nil
		})
	case bulkAdd:
		reqs, err := addRequests(items)
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
			results, err := s.engine.BulkAddLiquidity(ctx, caller, reqs)
			if err != nil {
				return nil, err
			}
			return liquidityViews(results, s), nil
		})
	case bulkRemove:
		reqs, err := removeRequests(items)
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
			results, err := s.engine.BulkRemoveLiquidity(ctx, caller, reqs)
			if err != nil {
				return nil, err
			}
			return liquidityViews(results, s), nil
		})
	default:
		return fmt.Errorf("unknown batch kind: %s", kind)
	}
}

func readBulkItems(path string) ([]bulkItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var items []bulkItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	return items, nil
}

func swapRequests(items []bulkItem) ([]amm.SwapRequest, error) {
	reqs := make([]amm.SwapRequest, 0, len(items))
	for i, item := range items {
		amount, err := parseAmount("amount", item.Amount)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		minOut, err := parseAmount("min_out", item.MinOut)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		recipients, err := parseAddresses([]string{item.Recipient})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		req := amm.SwapRequest{Amount: amount, MinOut: minOut, Deadline: deadlineOrMax(item.Deadline)}
		if len(recipients) > 0 {
			req.Recipient = recipients[0]
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func addRequests(items []bulkItem) ([]amm.AddRequest, error) {
	reqs := make([]amm.AddRequest, len(items))
	for i, item := range items {
		var err error
		if reqs[i].AmountX, err = parseAmount("amount_x", item.AmountX); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if reqs[i].AmountY, err = parseAmount("amount_y", item.AmountY); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if reqs[i].MinShares, err = parseAmount("min_shares", item.MinShares); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return reqs, nil
}

func removeRequests(items []bulkItem) ([]amm.RemoveRequest, error) {
	reqs := make([]amm.RemoveRequest, len(items))
	for i, item := range items {
		var err error
		if reqs[i].Shares, err = parseAmount("shares", item.Shares); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if reqs[i].MinX, err = parseAmount("min_x", item.MinX); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if reqs[i].MinY, err = parseAmount("min_y", item.MinY); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return reqs, nil
}

func liquidityViews(results []amm.LiquidityResult, s *session) []liquidityView {
	views := make([]liquidityView, 0, len(results))
	for _, res := range results {
		views = append(views, newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY))
	}
	return views
}
