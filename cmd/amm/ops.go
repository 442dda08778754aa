package main

import (
	"context"

	"github.com/spf13/cobra"

	"ammcore/internal/amm"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed the pool with its first deposit",
		RunE:  runInit,
	}
	cmd.Flags().String("caller", "", "provider account, becomes the fee recipient")
	cmd.Flags().String("amount-x", "", "token X deposit")
	cmd.Flags().String("amount-y", "", "token Y deposit")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	caller, err := flagAddress(cmd, "caller", true)
	if err != nil {
		return err
	}
	x, err := flagAmount(cmd, "amount-x")
	if err != nil {
		return err
	}
	y, err := flagAmount(cmd, "amount-y")
	if err != nil {
		return err
	}

	return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
		res, err := s.engine.Initialize(ctx, caller, x, y)
		if err != nil {
			return nil, err
		}
		return newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY), nil
	})
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap token X for token Y, or Y for X with --backward",
		RunE:  runSwap,
	}
	cmd.Flags().String("caller", "", "trader account")
	cmd.Flags().String("amount", "", "input amount")
	cmd.Flags().String("min-out", "", "minimum acceptable output")
	cmd.Flags().String("recipient", "", "output recipient, defaults to the caller")
	cmd.Flags().Uint64("deadline", 0, "last height the swap may execute at, 0 means none")
	cmd.Flags().Bool("backward", false, "sell token Y for token X")
	return cmd
}

func runSwap(cmd *cobra.Command, _ []string) error {
	caller, err := flagAddress(cmd, "caller", true)
	if err != nil {
		return err
	}
	req, err := swapRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	backward, _ := cmd.Flags().GetBool("backward")

	return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
		if backward {
			res, err := s.engine.SwapBackward(ctx, caller, req)
			if err != nil {
				return nil, err
			}
			return newSwapView(res, s.cfg.DecimalsX), nil
		}
		res, err := s.engine.SwapForward(ctx, caller, req)
		if err != nil {
			return nil, err
		}
		return newSwapView(res, s.cfg.DecimalsY), nil
	})
}

func swapRequestFromFlags(cmd *cobra.Command) (amm.SwapRequest, error) {
	amount, err := flagAmount(cmd, "amount")
	if err != nil {
		return amm.SwapRequest{}, err
	}
	minOut, err := flagAmount(cmd, "min-out")
	if err != nil {
		return amm.SwapRequest{}, err
	}
	recipient, err := flagAddress(cmd, "recipient", false)
	if err != nil {
		return amm.SwapRequest{}, err
	}
	deadline, _ := cmd.Flags().GetUint64("deadline")
	return amm.SwapRequest{
		Amount:    amount,
		MinOut:    minOut,
		Recipient: recipient,
		Deadline:  deadlineOrMax(deadline),
	}, nil
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Deposit both tokens for pool shares",
		RunE:  runAdd,
	}
	cmd.Flags().String("caller", "", "provider account")
	cmd.Flags().String("amount-x", "", "token X offered")
	cmd.Flags().String("amount-y", "", "token Y offered")
	cmd.Flags().String("min-shares", "", "minimum acceptable shares")
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	caller, err := flagAddress(cmd, "caller", true)
	if err != nil {
		return err
	}
	var req amm.AddRequest
	if req.AmountX, err = flagAmount(cmd, "amount-x"); err != nil {
		return err
	}
	if req.AmountY, err = flagAmount(cmd, "amount-y"); err != nil {
		return err
	}
	if req.MinShares, err = flagAmount(cmd, "min-shares"); err != nil {
		return err
	}

	return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
		res, err := s.engine.AddLiquidity(ctx, caller, req)
		if err != nil {
			return nil, err
		}
		return newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY), nil
	})
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Burn pool shares for both tokens",
		RunE:  runRemove,
	}
	cmd.Flags().String("caller", "", "share holder")
	cmd.Flags().String("shares", "", "shares to burn")
	cmd.Flags().String("min-x", "", "minimum acceptable token X")
	cmd.Flags().String("min-y", "", "minimum acceptable token Y")
	return cmd
}

func runRemove(cmd *cobra.Command, _ []string) error {
	caller, err := flagAddress(cmd, "caller", true)
	if err != nil {
		return err
	}
	var req amm.RemoveRequest
	if req.Shares, err = flagAmount(cmd, "shares"); err != nil {
		return err
	}
	if req.MinX, err = flagAmount(cmd, "min-x"); err != nil {
		return err
	}
	if req.MinY, err = flagAmount(cmd, "min-y"); err != nil {
		return err
	}

	return withSession(cmd, true, func(ctx context.Context, s *session) (interface{}, error) {
		res, err := s.engine.RemoveLiquidity(ctx, caller, req)
		if err != nil {
			return nil, err
		}
		return newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY), nil
	})
}
