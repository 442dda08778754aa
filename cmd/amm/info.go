package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"ammcore/internal/stats"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show pool metadata, reserves, fees and positions",
		RunE:  runInfo,
	}
	cmd.Flags().StringSlice("account", nil, "accounts to report, defaults to every share holder")
	return cmd
}

func runInfo(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, false, func(_ context.Context, s *session) (interface{}, error) {
		accounts, err := parseAddresses(s.cfg.Accounts)
		if err != nil {
			return nil, err
		}
		return buildInfo(s, accounts), nil
	})
}

func buildInfo(s *session, accounts []common.Address) infoView {
	e := s.engine
	meta := e.Metadata()
	fee := e.FeeInfo()
	rx, ry := e.Reserves()
	fx, fy := e.CumulativeFees()

	view := infoView{
		Name:        meta.Name,
		Version:     meta.Version,
		TokenX:      meta.TokenX.Hex(),
		TokenY:      meta.TokenY.Hex(),
		Custody:     meta.Custody.Hex(),
		FeeRate:     stats.FormatRate(meta.FeeBps, meta.BpsDenom, 2),
		Initialized: e.Initialized(),
		Sequence:    e.Sequence(),
		ReserveX:    rx.Dec(),
		ReserveY:    ry.Dec(),
		DisplayX:    stats.FormatAmount(rx, s.cfg.DecimalsX),
		DisplayY:    stats.FormatAmount(ry, s.cfg.DecimalsY),
		TotalShares: e.TotalShares().Dec(),
		TotalFeesX:  fx.Dec(),
		TotalFeesY:  fy.Dec(),
	}
	if fee.RecipientSet {
		view.FeeRecipient = fee.Recipient.Hex()
	}

	if len(accounts) == 0 {
		accounts = e.Holders()
	} else {
		view.BalancesX = make(map[string]string, len(accounts))
		view.BalancesY = make(map[string]string, len(accounts))
		for _, account := range accounts {
			view.BalancesX[account.Hex()] = s.bank.BalanceOf(meta.TokenX, account).Dec()
			view.BalancesY[account.Hex()] = s.bank.BalanceOf(meta.TokenY, account).Dec()
		}
	}
	for _, account := range accounts {
		pos := e.Position(account)
		view.Positions = append(view.Positions, positionView{
			Account: account.Hex(),
			Shares:  pos.Shares.Dec(),
			AmountX: pos.X.Dec(),
			AmountY: pos.Y.Dec(),
		})
	}
	return view
}

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit paper tokens to accounts in the local bank",
		RunE:  runFund,
	}
	cmd.Flags().String("token", "x", "token to credit: x, y, or an address")
	cmd.Flags().String("amount", "", "amount credited to each account")
	cmd.Flags().StringSlice("account", nil, "accounts to credit")
	return cmd
}

func runFund(cmd *cobra.Command, _ []string) error {
	amount, err := flagAmount(cmd, "amount")
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("amount must be positive")
	}
	tokenFlag, _ := cmd.Flags().GetString("token")

	return withSession(cmd, true, func(_ context.Context, s *session) (interface{}, error) {
		token, err := resolveToken(s, tokenFlag)
		if err != nil {
			return nil, err
		}
		accounts, err := parseAddresses(s.cfg.Accounts)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("at least one account is required")
		}

		view := fundView{Token: token.Hex(), Balances: make(map[string]string, len(accounts))}
		for _, account := range accounts {
			if err := s.bank.Mint(token, account, amount); err != nil {
				return nil, err
			}
			view.Balances[account.Hex()] = s.bank.BalanceOf(token, account).Dec()
		}
		return view, nil
	})
}

func resolveToken(s *session, input string) (common.Address, error) {
	meta := s.engine.Metadata()
	switch input {
	case "x", "X":
		return meta.TokenX, nil
	case "y", "Y":
		return meta.TokenY, nil
	}
	addrs, err := parseAddresses([]string{input})
	if err != nil {
		return common.Address{}, err
	}
	if len(addrs) == 0 {
		return common.Address{}, fmt.Errorf("token is required")
	}
	return addrs[0], nil
}
