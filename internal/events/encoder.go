package events

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"ammcore/internal/model"
)

// Encoder turns committed receipts into journal log records.
type Encoder struct {
	poolABI abi.ABI
	name    string
	pool    common.Address
	now     func() time.Time
}

// NewEncoder builds an encoder for the named pool held at the custody address.
func NewEncoder(name string, pool common.Address) (*Encoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}
	return &Encoder{poolABI: poolABI, name: name, pool: pool, now: time.Now}, nil
}

// UnitHash identifies a committed unit of work of the named pool.
func UnitHash(name string, seq uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return crypto.Keccak256Hash([]byte(name), buf[:])
}

// Encode converts every event of r into a log record. Log indexes follow the
// order the events were emitted in.
func (e *Encoder) Encode(r Receipt) ([]model.LogRecord, error) {
	txHash := UnitHash(e.name, r.Seq)
	ingestedAt := e.now()

	out := make([]model.LogRecord, 0, len(r.Events))
	for i, ev := range r.Events {
		log, err := e.encodeLog(ev)
		if err != nil {
			return nil, fmt.Errorf("encode %s event %d: %w", ev.Name, i, err)
		}
		log.BlockNumber = r.Height
		log.TxHash = txHash
		log.Index = uint(i)
		out = append(out, buildLogRecord(log, ingestedAt))
	}
	return out, nil
}

func (e *Encoder) encodeLog(ev Event) (types.Log, error) {
	event, ok := e.poolABI.Events[ev.Name]
	if !ok {
		return types.Log{}, fmt.Errorf("unknown event %q", ev.Name)
	}

	var (
		topics = []common.Hash{event.ID, topicFromAddress(ev.Sender)}
		values []interface{}
	)
	switch ev.Name {
	case NameSwap:
		topics = append(topics, topicFromAddress(ev.Recipient))
		values = []interface{}{ev.XToY, toBig(ev.AmountIn), toBig(ev.AmountOut), toBig(ev.Fee)}
	default:
		values = []interface{}{toBig(ev.Shares), toBig(ev.AmountX), toBig(ev.AmountY)}
	}

	data, err := event.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return types.Log{}, fmt.Errorf("pack: %w", err)
	}
	return types.Log{Address: e.pool, Topics: topics, Data: data}, nil
}

func buildLogRecord(log types.Log, ingestedAt time.Time) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}
