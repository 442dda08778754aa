// Package transfer defines the token transfer capability the pool calls into
// and an in-memory implementation of it.
package transfer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientFunds is returned when the sender balance cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransfer is returned for malformed transfers.
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// Transfer moves Amount of Token from From to To.
type Transfer struct {
	Token  common.Address
	Amount *uint256.Int
	From   common.Address
	To     common.Address
	Memo   string
}

// Transferer executes a single transfer synchronously. A transfer either
// completes or fails without partial effects.
type Transferer interface {
	Transfer(ctx context.Context, t Transfer) error
}

// Journal lets a caller roll back transfers made after a snapshot.
type Journal interface {
	Snapshot() int
	RevertToSnapshot(id int)
}

// Vault is a transfer capability that participates in a unit of work.
type Vault interface {
	Transferer
	Journal
}

// Compactor is implemented by journals that can drop history once no
// snapshot refers to it.
type Compactor interface {
	DiscardJournal()
}
