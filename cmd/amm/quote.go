package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <forward|backward|add|remove>",
		Short: "Price an operation against the current reserves without executing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuote,
	}
	cmd.Flags().String("amount", "", "swap input amount")
	cmd.Flags().String("amount-x", "", "token X offered to add")
	cmd.Flags().String("amount-y", "", "token Y offered to add")
	cmd.Flags().String("shares", "", "shares to remove")
	return cmd
}

func runQuote(cmd *cobra.Command, args []string) error {
	kind := args[0]
	return withSession(cmd, false, func(_ context.Context, s *session) (interface{}, error) {
		switch kind {
		case "forward", "backward":
			amount, err := flagAmount(cmd, "amount")
			if err != nil {
				return nil, err
			}
			if kind == "backward" {
				res, err := s.engine.QuoteBackward(amount)
				if err != nil {
					return nil, err
				}
				return newSwapView(res, s.cfg.DecimalsX), nil
			}
			res, err := s.engine.QuoteForward(amount)
			if err != nil {
				return nil, err
			}
			return newSwapView(res, s.cfg.DecimalsY), nil
		case "add":
			x, err := flagAmount(cmd, "amount-x")
			if err != nil {
				return nil, err
			}
			y, err := flagAmount(cmd, "amount-y")
			if err != nil {
				return nil, err
			}
			res, err := s.engine.QuoteAddLiquidity(x, y)
			if err != nil {
				return nil, err
			}
			return newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY), nil
		case "remove":
			shares, err := flagAmount(cmd, "shares")
			if err != nil {
				return nil, err
			}
			res, err := s.engine.QuoteRemoveLiquidity(shares)
			if err != nil {
				return nil, err
			}
			return newLiquidityView(res, s.cfg.DecimalsX, s.cfg.DecimalsY), nil
		default:
			return nil, fmt.Errorf("unknown quote kind: %s", kind)
		}
	})
}
