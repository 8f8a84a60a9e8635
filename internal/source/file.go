package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

const (
	tradesFilePrefix = "trades_"
	tradesFileLayout = "20060102"
)

// expectedHeaders enforces strict column ordering for dropped trade files.
var expectedHeaders = []string{"TradeId", "Period", "Volume"}

// FileSource reads trades from a folder where the trading platform drops one
// file per day, named trades_YYYYMMDD.csv.
//
// File format (';' separated, '.' or ',' as decimal separator):
//
//	TradeId;Period;Volume
//	T1;1;150.5
//	T1;2;-20
type FileSource struct {
	dir string
}

// NewFileSource creates a source reading from dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// FileName returns the file the source reads for the trading day of at.
func FileName(at time.Time) string {
	return tradesFilePrefix + at.Format(tradesFileLayout) + ".csv"
}

// FetchTrades implements TradeSource.
//
// It fails on:
//   - a missing file (ErrNoTradesFile), so the cycle retries until it is dropped
//   - a header not matching expected order/length
//   - a row with the wrong column count, a non-positive period or a bad number
func (s *FileSource) FetchTrades(ctx context.Context, at time.Time) ([]models.Trade, error) {
	path := filepath.Join(s.dir, FileName(at))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTradesFile, path)
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1 // checked explicitly per row
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	group := newGroupByTrade(tradeDate(at))
	lineNumber := 1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		id, pv, err := recordToPeriod(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		group.add(id, pv)
	}

	return group.trades, nil
}

// recordToPeriod converts one validated row into its trade id and period volume.
func recordToPeriod(rec []string) (string, models.PeriodVolume, error) {
	var pv models.PeriodVolume

	id := strings.TrimSpace(rec[0])
	if id == "" {
		return "", pv, errors.New("empty TradeId")
	}

	period, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return "", pv, fmt.Errorf("invalid Period: %v", err)
	}
	if period < 1 {
		return "", pv, fmt.Errorf("invalid Period: %d is not positive", period)
	}
	pv.Period = period

	s := strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", ".")
	vol, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", pv, fmt.Errorf("invalid Volume: %v", err)
	}
	pv.Volume = vol

	return id, pv, nil
}
