package exchange

import (
	"context"

	"emacross/internal/model"
)

// BarSource defines the standard interface for anything that supplies a
// historical bar series in ascending time order.
type BarSource interface {
	GetName() string
	FetchBars(ctx context.Context) ([]model.Bar, error)
}

// BarStreamer pushes closed bars as they complete until ctx is cancelled.
type BarStreamer interface {
	GetName() string
	StreamBars(ctx context.Context, barChan chan<- model.Bar) error
}
