package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

// parseAddresses converts string addresses into common.Address, skipping blanks.
func parseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addresses = append(addresses, common.HexToAddress(input))
	}
	return addresses, nil
}

// parseAmount reads a base-10 or 0x-prefixed amount. An empty input yields nil.
func parseAmount(name, input string) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		v, err = uint256.FromHex(input)
	} else {
		v, err = uint256.FromDecimal(input)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, input, err)
	}
	return v, nil
}

func flagAmount(cmd *cobra.Command, name string) (*uint256.Int, error) {
	input, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	return parseAmount(name, input)
}

// flagAddress reads an address flag. An empty optional flag yields the zero address.
func flagAddress(cmd *cobra.Command, name string, required bool) (common.Address, error) {
	input, err := cmd.Flags().GetString(name)
	if err != nil {
		return common.Address{}, err
	}
	addrs, err := parseAddresses([]string{input})
	if err != nil {
		return common.Address{}, err
	}
	if len(addrs) == 0 {
		if required {
			return common.Address{}, fmt.Errorf("%s is required", name)
		}
		return common.Address{}, nil
	}
	return addrs[0], nil
}

// deadlineOrMax maps an unset deadline to the largest height.
func deadlineOrMax(deadline uint64) uint64 {
	if deadline == 0 {
		return ^uint64(0)
	}
	return deadline
}
