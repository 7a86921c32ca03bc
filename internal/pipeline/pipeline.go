// Package pipeline runs a whole-file repair: decode, parse and repair each
// record, filter, quarantine damaged records and write canonical output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/oleg578/csvmend"
	"github.com/oleg578/csvmend/internal/config"
	"github.com/oleg578/csvmend/internal/filter"
	"github.com/oleg578/csvmend/internal/quarantine"
	"github.com/oleg578/csvmend/internal/textenc"
)

// Quarantine receives the repaired text of damaged records.
type Quarantine interface {
	Put(runID ksuid.KSUID, line int, text string) error
}

// Options configures a repair run.
type Options struct {
	Comma       byte
	OutComma    byte
	Header      bool
	Reconcile   bool
	AlwaysQuote bool
	CRLF        bool
	Encoding    string
	Drop        *filter.Drop
	Quarantine  Quarantine
	Logger      zerolog.Logger
}

// Stats summarises a repair run.
type Stats struct {
	RunID   ksuid.KSUID
	Records int
	Damaged int
	Padded  int
	Merged  int
	Dropped int
}

// FromConfig builds Options from a loaded configuration. The quarantine store
// and logger are left for the caller to attach.
func FromConfig(cfg *config.Config) (Options, error) {
	comma, err := cfg.Comma()
	if err != nil {
		return Options{}, err
	}
	drop, err := filter.Compile(cfg.DropPattern)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Comma:       comma,
		OutComma:    comma,
		Header:      cfg.Header,
		Reconcile:   cfg.Reconcile,
		AlwaysQuote: cfg.AlwaysQuote,
		CRLF:        cfg.CRLF,
		Encoding:    cfg.Encoding,
		Drop:        drop,
		Logger:      zerolog.Nop(),
	}, nil
}

// OpenQuarantine opens the store configured in cfg, or returns nil when none is set.
func OpenQuarantine(cfg *config.Config) (*quarantine.Store, error) {
	if cfg.QuarantineDir == "" {
		return nil, nil
	}
	return quarantine.Open(cfg.QuarantineDir)
}

// Run repairs every record read from src and writes the canonical form to dst.
// It stops early when ctx is cancelled.
func Run(ctx context.Context, opts Options, src io.Reader, dst io.Writer) (Stats, error) {
	stats := Stats{RunID: ksuid.New()}
	logger := opts.Logger.With().Str("run_id", stats.RunID.String()).Logger()

	decoded, err := textenc.NewReader(src, opts.Encoding)
	if err != nil {
		return stats, err
	}

	reader := csvmend.NewReader(decoded)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.Header = opts.Header
	reader.Reconcile = opts.Reconcile

	writer := csvmend.NewWriter(dst)
	writer.Comma = opts.OutComma
	if writer.Comma == 0 {
		writer.Comma = reader.Comma
	}
	writer.AlwaysQuote = opts.AlwaysQuote
	writer.UseCRLF = opts.CRLF

	logger.Debug().
		Str("delimiter", string(reader.Comma)).
		Bool("header", opts.Header).
		Bool("reconcile", opts.Reconcile).
		Str("drop", opts.Drop.Pattern()).
		Msg("repair started")

	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		damaged := errors.Is(err, csvmend.ErrDamagedQuote)
		if err != nil && !damaged {
			return stats, fmt.Errorf("failed to read line %d: %w", reader.LineNumber()+1, err)
		}

		stats.Records++
		line := reader.Line()
		switch r := reader.LastReconciliation(); r.Action {
		case csvmend.Padded:
			stats.Padded++
			logger.Debug().Int("line", reader.LineNumber()).Int("from", r.From).Int("to", r.To).Msg("record padded")
		case csvmend.Merged:
			stats.Merged++
			logger.Debug().Int("line", reader.LineNumber()).Int("from", r.From).Int("to", r.To).Msg("record merged")
		case csvmend.Unchanged:
		}

		if damaged {
			stats.Damaged++
			logger.Warn().Err(err).Msg("damaged quote repaired")
			if opts.Quarantine != nil {
				if qerr := opts.Quarantine.Put(stats.RunID, reader.LineNumber(), line.Text(false)); qerr != nil {
					return stats, qerr
				}
			}
		}

		isHeader := first && opts.Header
		if !isHeader && opts.Drop.Match(line.Text(false)) {
			stats.Dropped++
			logger.Debug().Int("line", reader.LineNumber()).Msg("record dropped")
			continue
		}

		if err := writer.WriteLine(line); err != nil {
			return stats, fmt.Errorf("failed to write record from line %d: %w", reader.LineNumber(), err)
		}
	}

	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("failed to flush output: %w", err)
	}

	logger.Info().
		Int("records", stats.Records).
		Int("damaged", stats.Damaged).
		Int("padded", stats.Padded).
		Int("merged", stats.Merged).
		Int("dropped", stats.Dropped).
		Msg("repair finished")
	return stats, nil
}
