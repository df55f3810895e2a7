package eventproducers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventpubsub"
)

type OptionChainFetcher interface {
	FetchOptionChain(ctx context.Context, symbol string) (*eventmodels.OptionChainSnapshot, error)
}

// OptionChainPoller fetches each symbol's option chain on a fixed interval
// and publishes every new snapshot on the bus.
type OptionChainPoller struct {
	wg       *sync.WaitGroup
	fetcher  OptionChainFetcher
	symbols  []string
	interval time.Duration
	lastIDs  map[string]uuid.UUID
}

func NewOptionChainPoller(wg *sync.WaitGroup, fetcher OptionChainFetcher, symbols []string, interval time.Duration) *OptionChainPoller {
	return &OptionChainPoller{
		wg:       wg,
		fetcher:  fetcher,
		symbols:  symbols,
		interval: interval,
		lastIDs:  make(map[string]uuid.UUID),
	}
}

// Poll fetches every symbol once and returns how many snapshots were
// published. A snapshot already published, e.g. one served from the
// client's cache, is not published again.
func (p *OptionChainPoller) Poll(ctx context.Context) int {
	published := 0
	for _, symbol := range p.symbols {
		snapshot, err := p.fetcher.FetchOptionChain(ctx, symbol)
		if err != nil {
			log.WithField("symbol", symbol).Errorf("OptionChainPoller: fetch failed: %v", err)
			continue
		}

		if p.lastIDs[symbol] == snapshot.ID {
			log.WithField("symbol", symbol).Debug("OptionChainPoller: snapshot unchanged")
			continue
		}

		p.lastIDs[symbol] = snapshot.ID

		eventpubsub.Publish(eventpubsub.OptionChainSnapshotEvent, &eventmodels.OptionChainSnapshotEvent{
			Ctx:      ctx,
			Snapshot: snapshot,
		})

		published++
	}

	return published
}

func (p *OptionChainPoller) Start(ctx context.Context) {
	p.wg.Add(1)

	ticker := time.NewTicker(p.interval)

	go func() {
		defer p.wg.Done()
		defer ticker.Stop()

		p.Poll(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping OptionChainPoller")
				return
			case <-ticker.C:
				p.Poll(ctx)
			}
		}
	}()
}
