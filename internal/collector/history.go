package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"FibTrader/internal/model"
)

// DownloadHistory pages forward from since until the provider returns a short page.
// Each page starts one millisecond after the previous page's last open time.
func DownloadHistory(ctx context.Context, f HistoryFetcher, symbol, interval string, since time.Time, pageSize int, pause time.Duration) ([]model.PriceBar, error) {
	if pageSize <= 0 || pageSize > maxKlineLimit {
		pageSize = 500
	}
	var all []model.PriceBar
	for {
		page, err := f.FetchBarsSince(ctx, symbol, interval, since, pageSize)
		if err != nil {
			return all, fmt.Errorf("download history since %s: %w", since.Format(time.RFC3339), err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		since = page[len(page)-1].OpenTime.Add(time.Millisecond)
		if len(page) < pageSize {
			break
		}
		if pause > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(pause):
			}
		}
	}
	return all, nil
}

// WriteCSV writes bars with a timestamp,open,high,low,close,volume header.
// Timestamps are Unix milliseconds.
func WriteCSV(w io.Writer, bars []model.PriceBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			strconv.FormatInt(b.OpenTime.UnixMilli(), 10),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			b.Volume.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
