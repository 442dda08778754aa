package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammcore/internal/config"
	"ammcore/internal/events"
	"ammcore/internal/model"
	"ammcore/internal/quote"
	"ammcore/internal/storage"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode the event journal into typed events",
		RunE:  runDecode,
	}
	cmd.Flags().String("in", "", "input journal JSONL, defaults to the pool journal")
	cmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	cmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	return cmd
}

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Pool.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	switch {
	case cfg.In == "":
		return fmt.Errorf("input path is required")
	case cfg.Out == "":
		return fmt.Errorf("output path is required")
	case cfg.Errors == "":
		return fmt.Errorf("errors path is required")
	}

	decoder, err := events.NewDecoder(poolMeta(cfg.Pool))
	if err != nil {
		return err
	}

	in, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := createJSONL(cfg.Out)
	if err != nil {
		return err
	}
	errs, err := createJSONL(cfg.Errors)
	if err != nil {
		out.Close()
		return err
	}

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	counts, runErr := decodeJournal(in, decoder, out, errs)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if err := errs.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("decode complete",
		zap.Int("total", counts.total),
		zap.Int("decoded", counts.decoded),
		zap.Int("skipped", counts.skipped),
		zap.Int("failed", counts.failed),
	)
	return nil
}

type decodeCounts struct {
	total, decoded, skipped, failed int
}

// decodeJournal decodes every journal line of in. Typed events go to out;
// lines that cannot be decoded are recorded in errs and do not stop the run.
func decodeJournal(in io.Reader, decoder *events.Decoder, out, errs *jsonlFile) (decodeCounts, error) {
	var counts decodeCounts
	fail := func(rec model.DecodeError) error {
		counts.failed++
		return errs.Write(rec)
	}

	err := storage.ScanLines(in, func(line []byte) error {
		counts.total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fail(model.DecodeError{Error: err.Error()})
		}
		if len(record.Topics) == 0 {
			return fail(decodeErrorFromRecord(record, fmt.Errorf("missing topic0")))
		}
		if !decoder.CanDecode(record.Topics[0]) {
			counts.skipped++
			return nil
		}

		event, err := decoder.Decode(record)
		if err != nil {
			return fail(decodeErrorFromRecord(record, err))
		}
		counts.decoded++
		return out.Write(event)
	})
	if err != nil {
		return counts, fmt.Errorf("decode journal: %w", err)
	}
	return counts, nil
}

func poolMeta(cfg config.Config) model.PoolMeta {
	return model.PoolMeta{
		Name:      cfg.Name,
		TokenX:    cfg.TokenX,
		TokenY:    cfg.TokenY,
		FeeBps:    quote.FeeBps,
		DecimalsX: cfg.DecimalsX,
		DecimalsY: cfg.DecimalsY,
	}
}

func decodeErrorFromRecord(record model.LogRecord, err error) model.DecodeError {
	rec := model.DecodeError{
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Error:       err.Error(),
	}
	if len(record.Topics) > 0 {
		rec.Topic0 = record.Topics[0]
	}
	return rec
}

// jsonlFile writes one JSON value per line to a truncated file.
type jsonlFile struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func createJSONL(path string) (*jsonlFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	buf := bufio.NewWriter(file)
	return &jsonlFile{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (w *jsonlFile) Write(value interface{}) error {
	if err := w.enc.Encode(value); err != nil {
		return fmt.Errorf("write %s: %w", w.file.Name(), err)
	}
	return nil
}

func (w *jsonlFile) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
