package engine

import (
	"time"

	"github.com/google/btree"
)

type OrderBookLevel struct {
	Price      float64
	Size       int64
	OrderCount int
}

type OrderBookSnapshot struct {
	Symbol     string
	Bids       []OrderBookLevel // strictly descending price
	Asks       []OrderBookLevel // strictly ascending price
	LastUpdate time.Time
}

type bidItem struct {
	level *OrderBookLevel
}

// bids sort descending: Min() of the tree is the best (highest) bid.
func (b *bidItem) Less(than btree.Item) bool {
	return b.level.Price > than.(*bidItem).level.Price
}

type askItem struct {
	level *OrderBookLevel
}

func (a *askItem) Less(than btree.Item) bool {
	return a.level.Price < than.(*askItem).level.Price
}

// depthBook is the synthetic depth ladder for one symbol. Level sizes are
// the only persistent state; prices are re-derived from the mid on every
// rebuild. Not safe for concurrent use on its own: the owning symbolState
// serializes all access.
type depthBook struct {
	bids       []*OrderBookLevel
	asks       []*OrderBookLevel
	bidTree    *btree.BTree
	askTree    *btree.BTree
	lastUpdate time.Time
}

func newDepthBook(cfg Config, rng *lockedRand) *depthBook {
	b := &depthBook{
		bids:    make([]*OrderBookLevel, cfg.DepthLevels),
		asks:    make([]*OrderBookLevel, cfg.DepthLevels),
		bidTree: btree.New(32),
		askTree: btree.New(32),
	}
	for i := range b.bids {
		b.bids[i] = seedLevel(cfg, rng)
		b.asks[i] = seedLevel(cfg, rng)
	}
	return b
}

func seedLevel(cfg Config, rng *lockedRand) *OrderBookLevel {
	size := 100 + rng.Int63n(1000)
	if size < cfg.MinDepthSize {
		size = cfg.MinDepthSize
	}
	return &OrderBookLevel{
		Size:       size,
		OrderCount: 1 + rng.Intn(10),
	}
}

// rebuild re-prices every level off the new mid and walks each level's size
// by a bounded random step, floored so depth never disappears.
func (b *depthBook) rebuild(mid float64, cfg Config, rng *lockedRand, now time.Time) {
	half := cfg.Spread / 2

	b.bidTree.Clear(false)
	b.askTree.Clear(false)

	for i, lvl := range b.bids {
		lvl.Price = mid * (1 - half - float64(i)*cfg.DepthIncrement)
		lvl.Size = walkSize(lvl.Size, cfg.MinDepthSize, rng)
		b.bidTree.ReplaceOrInsert(&bidItem{level: lvl})
	}
	for i, lvl := range b.asks {
		lvl.Price = mid * (1 + half + float64(i)*cfg.DepthIncrement)
		lvl.Size = walkSize(lvl.Size, cfg.MinDepthSize, rng)
		b.askTree.ReplaceOrInsert(&askItem{level: lvl})
	}

	b.lastUpdate = now
}

func walkSize(size, floor int64, rng *lockedRand) int64 {
	size += rng.Int63n(201) - 100
	if size < floor {
		size = floor
	}
	return size
}

// snapshot copies the ladder out of the trees in price order, so callers
// hold an immutable view.
func (b *depthBook) snapshot(symbol string) OrderBookSnapshot {
	snap := OrderBookSnapshot{
		Symbol:     symbol,
		Bids:       make([]OrderBookLevel, 0, len(b.bids)),
		Asks:       make([]OrderBookLevel, 0, len(b.asks)),
		LastUpdate: b.lastUpdate,
	}
	b.bidTree.Ascend(func(item btree.Item) bool {
		snap.Bids = append(snap.Bids, *item.(*bidItem).level)
		return true
	})
	b.askTree.Ascend(func(item btree.Item) bool {
		snap.Asks = append(snap.Asks, *item.(*askItem).level)
		return true
	})
	return snap
}

func (b *depthBook) bestBid() (OrderBookLevel, bool) {
	item := b.bidTree.Min()
	if item == nil {
		return OrderBookLevel{}, false
	}
	return *item.(*bidItem).level, true
}

func (b *depthBook) bestAsk() (OrderBookLevel, bool) {
	item := b.askTree.Min()
	if item == nil {
		return OrderBookLevel{}, false
	}
	return *item.(*askItem).level, true
}
