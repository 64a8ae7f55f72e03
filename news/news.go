// Package news pairs an event producer with an observer: a Journalist fires
// string events and a NewsPaper logs every one it is notified of.
package news

import (
	"context"

	"github.com/xraph/go-utils/log"

	"github.com/xraph/berth"
)

// Journalist broadcasts the news it receives.
type Journalist struct {
	event *berth.Event[string]
}

// NewJournalist creates a journalist firing on event.
func NewJournalist(event *berth.Event[string]) *Journalist {
	return &Journalist{event: event}
}

// ReceiveNews fires news to every string observer and returns once all of
// them have handled it.
func (j *Journalist) ReceiveNews(ctx context.Context, news string) error {
	return j.event.Fire(ctx, news)
}

// NewsPaper observes string events.
type NewsPaper struct {
	logger berth.Logger
}

// NewNewsPaper creates a newspaper reporting to logger.
func NewNewsPaper(logger berth.Logger) *NewsPaper {
	return &NewsPaper{logger: logger}
}

// Notify implements berth.Observer.
func (n *NewsPaper) Notify(_ context.Context, news string) error {
	n.logger.Info("We got the news, we'll publish it on a newspaper", log.String("news", news))
	return nil
}
