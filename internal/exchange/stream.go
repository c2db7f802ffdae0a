package exchange

import (
	"context"
	"fmt"
	"log/slog"

	"emacross/internal/model"
)

// CollectBars runs the streamer until n closed bars have arrived.
func CollectBars(ctx context.Context, streamer BarStreamer, n int) ([]model.Bar, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	barChan := make(chan model.Bar)
	errChan := make(chan error, 1)
	go func() {
		errChan <- streamer.StreamBars(ctx, barChan)
	}()

	bars := make([]model.Bar, 0, n)
	for len(bars) < n {
		select {
		case bar := <-barChan:
			bars = append(bars, bar)
		case err := <-errChan:
			if err == nil {
				err = ctx.Err()
			}
			return nil, fmt.Errorf("%s stream stopped after %d of %d bars: %w", streamer.GetName(), len(bars), n, err)
		case <-ctx.Done():
			return nil, fmt.Errorf("%s stream: collected %d of %d bars: %w", streamer.GetName(), len(bars), n, ctx.Err())
		}
	}

	// Stop the streamer and wait for it so no goroutine outlives the call.
	cancel()
	<-errChan
	return bars, nil
}

// StreamSource adapts a BarStreamer into a BarSource that waits for a fixed number of bars.
type StreamSource struct {
	logger   *slog.Logger
	streamer BarStreamer
	count    int
}

// NewStreamSource creates a new StreamSource.
func NewStreamSource(logger *slog.Logger, streamer BarStreamer, count int) *StreamSource {
	return &StreamSource{logger: logger, streamer: streamer, count: count}
}

func (s *StreamSource) GetName() string {
	return s.streamer.GetName() + "_stream"
}

// FetchBars blocks until count closed bars have been streamed.
func (s *StreamSource) FetchBars(ctx context.Context) ([]model.Bar, error) {
	s.logger.Info("StreamSource: collecting bars", "source", s.streamer.GetName(), "count", s.count)
	return CollectBars(ctx, s.streamer, s.count)
}
