package news

import (
	"context"

	"github.com/xraph/berth"
)

// DefaultHeadline is the news the demo program announces.
const DefaultHeadline = "Java 17 has arrived!!"

// Module provides a singleton Journalist and a NewsPaper. When subscribe is
// true the NewsPaper is registered as an observer of string events; without
// it the journalist's news reaches nobody.
func Module(subscribe bool) berth.Module {
	return func(c berth.Container) error {
		if err := berth.ProvideConstructor(c, NewJournalist, berth.AsSingleton()); err != nil {
			return err
		}

		if err := berth.ProvideConstructor(c, NewNewsPaper); err != nil {
			return err
		}

		if !subscribe {
			return nil
		}

		return berth.ObserveBean[string, *NewsPaper](c)
	}
}

// Announce selects the journalist and hands it the headline.
func Announce(ctx context.Context, c berth.Container, headline string) error {
	journalist, err := berth.Select[*Journalist](c).Get()
	if err != nil {
		return err
	}

	return journalist.ReceiveNews(ctx, headline)
}
