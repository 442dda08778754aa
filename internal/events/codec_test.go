package events

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"ammcore/internal/model"
)

var (
	custody = common.HexToAddress("0x9999999999999999999999999999999999999999")
	alice   = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob     = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func TestEncodeDecodeReceipt(t *testing.T) {
	enc, err := NewEncoder("x-y", custody)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	enc.now = func() time.Time { return time.Unix(1700000000, 0) }

	meta := model.PoolMeta{Name: "x-y", FeeBps: 30}
	dec, err := NewDecoder(meta)
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	receipt := Receipt{
		Seq:    7,
		Height: 120,
		Op:     "bulk-swap-forward",
		Events: []Event{
			NewSwap(alice, bob, true, uint256.NewInt(10_000_000), uint256.NewInt(18_132_217), uint256.NewInt(30_000)),
			NewLiquidity(NameLiquidityAdded, alice, uint256.NewInt(39_062_500_000_041), uint256.NewInt(49_999_999), uint256.NewInt(99_999_999)),
		},
	}

	logs, err := enc.Encode(receipt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].TxHash != logs[1].TxHash || logs[0].TxHash != UnitHash("x-y", 7).Hex() {
		t.Fatalf("tx hash mismatch: %s %s", logs[0].TxHash, logs[1].TxHash)
	}
	if logs[1].LogIndex != 1 || logs[1].BlockNumber != 120 {
		t.Fatalf("log position mismatch: %+v", logs[1])
	}
	if logs[0].IngestedAt != "2023-11-14T22:13:20Z" {
		t.Fatalf("ingested_at mismatch: %s", logs[0].IngestedAt)
	}

	swapEvent, err := dec.Decode(logs[0])
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}
	swap, ok := swapEvent.Decoded.(model.SwapEventData)
	if !ok {
		t.Fatalf("swap type mismatch")
	}
	want := model.SwapEventData{
		Sender:    alice.Hex(),
		Recipient: bob.Hex(),
		XToY:      true,
		AmountIn:  "10000000",
		AmountOut: "18132217",
		Fee:       "30000",
	}
	if swap != want {
		t.Fatalf("swap mismatch: %+v", swap)
	}
	if swapEvent.PoolMeta != meta || swapEvent.Address != custody.Hex() {
		t.Fatalf("swap metadata mismatch: %+v", swapEvent)
	}

	addEvent, err := dec.Decode(logs[1])
	if err != nil {
		t.Fatalf("decode add: %v", err)
	}
	if addEvent.EventName != NameLiquidityAdded {
		t.Fatalf("event name mismatch: %s", addEvent.EventName)
	}
	add := addEvent.Decoded.(model.LiquidityEventData)
	if add.Provider != alice.Hex() || add.Shares != "39062500000041" || add.AmountY != "99999999" {
		t.Fatalf("liquidity mismatch: %+v", add)
	}
}

func TestDecodeRejectsMalformedLogs(t *testing.T) {
	dec, err := NewDecoder(model.PoolMeta{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	poolABI, _ := PoolABI()

	if dec.CanDecode("") || dec.CanDecode("0x1234") {
		t.Fatalf("unexpected topic accepted")
	}
	if !dec.CanDecode(strings.ToUpper(poolABI.Events[NameSwap].ID.Hex())) {
		t.Fatalf("swap topic rejected")
	}

	if _, err := dec.Decode(model.LogRecord{}); err == nil {
		t.Fatalf("expected missing topics error")
	}

	data, err := poolABI.Events[NameInitialized].Inputs.NonIndexed().Pack(big.NewInt(1), big.NewInt(2), big.NewInt(3))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	wrongTopics := model.LogRecord{
		Address: custody.Hex(),
		Topics:  []string{poolABI.Events[NameInitialized].ID.Hex()},
		Data:    hexutil.Encode(data),
	}
	if _, err := dec.Decode(wrongTopics); err == nil {
		t.Fatalf("expected topic count error")
	}

	badAddress := wrongTopics
	badAddress.Address = "pool"
	badAddress.Topics = append(badAddress.Topics, topicFromAddress(alice).Hex())
	if _, err := dec.Decode(badAddress); err == nil {
		t.Fatalf("expected invalid address error")
	}

	truncated := wrongTopics
	truncated.Topics = append(truncated.Topics, topicFromAddress(alice).Hex())
	truncated.Data = hexutil.Encode(data[:40])
	if _, err := dec.Decode(truncated); err == nil {
		t.Fatalf("expected unpack error")
	}
}

func TestEncodeUnknownEvent(t *testing.T) {
	enc, err := NewEncoder("x-y", custody)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	if _, err := enc.Encode(Receipt{Events: []Event{{Name: "Collect"}}}); err == nil {
		t.Fatalf("expected unknown event error")
	}
}
