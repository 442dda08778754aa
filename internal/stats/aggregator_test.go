package stats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"ammcore/internal/model"
)

func typedRecord(t *testing.T, block uint64, name string, decoded interface{}) model.TypedEventRecord {
	t.Helper()
	raw, err := json.Marshal(decoded)
	require.NoError(t, err)
	return model.TypedEventRecord{
		BlockNumber: block,
		EventName:   name,
		Decoded:     raw,
		PoolMeta:    model.PoolMeta{Name: "x-y", DecimalsX: 6, DecimalsY: 6},
	}
}

func TestAggregatorWindows(t *testing.T) {
	require := require.New(t)

	records := []model.TypedEventRecord{
		typedRecord(t, 5, "Initialized", model.LiquidityEventData{Shares: "78125000000083", AmountX: "100000000", AmountY: "200000000"}),
		typedRecord(t, 12, "Swap", model.SwapEventData{XToY: true, AmountIn: "10000000", AmountOut: "18132217", Fee: "30000"}),
		typedRecord(t, 19, "Swap", model.SwapEventData{XToY: false, AmountIn: "20000000", AmountOut: "9066108", Fee: "60000"}),
		typedRecord(t, 15, "LiquidityRemoved", model.LiquidityEventData{Shares: "1000"}),
		typedRecord(t, 20, "LiquidityAdded", model.LiquidityEventData{Shares: "39062500000041"}),
	}

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		require.NoError(err)
		buf.Write(line)
		buf.WriteByte('\n')
	}

	agg := NewAggregator(Config{WindowSize: 10, FromBlock: 10}, nil)
	require.NoError(agg.ReadFrom(&buf))

	windows := agg.Windows()
	require.Len(windows, 2)

	first := windows[0]
	require.Equal(uint64(10), first.WindowStart)
	require.Equal(uint64(19), first.WindowEnd)
	require.Equal(uint64(2), first.SwapCount)
	require.Equal("19066108", first.VolumeX)
	require.Equal("38132217", first.VolumeY)
	require.Equal("30000", first.FeeX)
	require.Equal("60000", first.FeeY)
	require.Equal(uint64(1), first.RemoveCount)
	require.Equal("1000", first.SharesBurned)
	require.Equal("19.066108", first.VolumeXDisplay)
	require.Equal("x-y", first.PoolName)

	second := windows[1]
	require.Equal(uint64(20), second.WindowStart)
	require.Equal(uint64(1), second.AddCount)
	require.Equal("39062500000041", second.SharesMinted)
	require.Equal("0", second.VolumeXDisplay)
}

func TestAggregatorRejectsBadInput(t *testing.T) {
	agg := NewAggregator(Config{WindowSize: 0}, nil)
	require.Error(t, agg.Add(model.TypedEventRecord{}))

	agg = NewAggregator(Config{WindowSize: 10}, nil)
	bad := typedRecord(t, 1, "Swap", model.SwapEventData{AmountIn: "-5"})
	require.Error(t, agg.Add(bad))

	require.Error(t, agg.ReadFrom(bytes.NewBufferString("{not json}\n")))

	// Unknown events are ignored.
	require.NoError(t, agg.Add(model.TypedEventRecord{BlockNumber: 3, EventName: "Collect"}))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "18.132217", FormatAmount(uint256.NewInt(18_132_217), 6))
	require.Equal(t, "18132217", FormatAmount(uint256.NewInt(18_132_217), 0))
	require.Equal(t, "0", FormatAmount(nil, 6))
	require.Equal(t, "0.30%", FormatRate(30, 10_000, 2))
	require.Equal(t, "0", FormatRate(1, 0, 2))
}
