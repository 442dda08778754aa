package amm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"ammcore/internal/quote"
)

// Code is a stable numeric error code reported for a rejected unit of work.
type Code uint16

// Error codes.
const (
	CodeZeroInput             Code = 100
	CodeZeroReserves          Code = 101
	CodeDeadlineExpired       Code = 102
	CodeSlippageExceeded      Code = 103
	CodeInsufficientLiquidity Code = 104
	CodeTransferInFailed      Code = 105
	CodeTransferOutFailed     Code = 106
	CodeFeeTransferFailed     Code = 107
	CodeBatchTooLarge         Code = 108
	CodeOverflow              Code = 109

	CodeAlreadyInitialized  Code = 200
	CodeNotInitialized      Code = 201
	CodeInsufficientBalance Code = 202
	CodeZeroShares          Code = 203
	CodeBelowMinLiquidity   Code = 204
)

// CodeError is an error carrying a numeric code.
type CodeError struct {
	Code Code
	Msg  string
}

func (e *CodeError) Error() string {
	return e.Msg
}

// Is matches any CodeError with the same code.
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	return ok && t.Code == e.Code
}

var (
	ErrZeroInput             = &CodeError{CodeZeroInput, "zero input"}
	ErrZeroReserves          = &CodeError{CodeZeroReserves, "zero reserves"}
	ErrDeadlineExpired       = &CodeError{CodeDeadlineExpired, "deadline expired"}
	ErrSlippageExceeded      = &CodeError{CodeSlippageExceeded, "slippage exceeded"}
	ErrInsufficientLiquidity = &CodeError{CodeInsufficientLiquidity, "insufficient liquidity"}
	ErrTransferInFailed      = &CodeError{CodeTransferInFailed, "transfer in failed"}
	ErrTransferOutFailed     = &CodeError{CodeTransferOutFailed, "transfer out failed"}
	ErrFeeTransferFailed     = &CodeError{CodeFeeTransferFailed, "fee transfer failed"}
	ErrBatchTooLarge         = &CodeError{CodeBatchTooLarge, "batch too large"}
	ErrOverflow              = &CodeError{CodeOverflow, "arithmetic overflow"}

	ErrAlreadyInitialized  = &CodeError{CodeAlreadyInitialized, "already initialized"}
	ErrNotInitialized      = &CodeError{CodeNotInitialized, "not initialized"}
	ErrInsufficientBalance = &CodeError{CodeInsufficientBalance, "insufficient share balance"}
	ErrZeroShares          = &CodeError{CodeZeroShares, "zero shares"}
	ErrBelowMinLiquidity   = &CodeError{CodeBelowMinLiquidity, "below minimum liquidity"}
)

// CodeOf returns the code carried by err, or 0 if it has none.
func CodeOf(err error) Code {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// fromQuote maps a pricing error onto its code.
func fromQuote(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, quote.ErrZeroAmount):
		return ErrZeroInput
	case errors.Is(err, quote.ErrZeroReserves):
		return ErrZeroReserves
	case errors.Is(err, quote.ErrInsufficientLiquidity):
		return ErrInsufficientLiquidity
	case errors.Is(err, quote.ErrNoShares):
		return ErrZeroShares
	case errors.Is(err, quote.ErrOverflow):
		return ErrOverflow
	default:
		return fmt.Errorf("quote: %w", err)
	}
}

// checkAmount rejects nil, zero, and oversized inputs.
func checkAmount(name string, v *uint256.Int) error {
	if v == nil || v.IsZero() {
		return fmt.Errorf("%w: %s", ErrZeroInput, name)
	}
	if v.Gt(quote.MaxAmount) {
		return fmt.Errorf("%w: %s exceeds 2^128-1", ErrOverflow, name)
	}
	return nil
}
