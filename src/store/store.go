package store

import (
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Store
// -----------------------------------------------------------------------------

// MarketSnapshot is the value of the ticks cell: the latest tick per symbol
// and the symbol the producing write touched.
type MarketSnapshot struct {
	Ticks   map[string]models.MMarketTick
	Changed string
}

// Store holds the three independently observable cells fed by the session
// manager and by confirmed request results. There are no cross-cell
// transactions; the last write to a cell wins.
type Store struct {
	ticks     *Cell[MarketSnapshot]
	portfolio *Cell[*models.MPortfolio]
	orders    *Cell[[]models.MOrder]
}

// -----------------------------------------------------------------------------

func NewStore(loop *utils.EventLoop) *Store {
	return &Store{
		ticks:     NewCell(loop, MarketSnapshot{Ticks: map[string]models.MMarketTick{}}),
		portfolio: NewCell[*models.MPortfolio](loop, nil),
		orders:    NewCell[[]models.MOrder](loop, nil),
	}
}

// -----------------------------------------------------------------------------
// Writers
// -----------------------------------------------------------------------------

// ApplyTick replaces the tick stored for symbol. No field merging.
func (s *Store) ApplyTick(symbol string, tick models.MMarketTick) {
	tick.Symbol = symbol
	s.ticks.Update(func(old MarketSnapshot) MarketSnapshot {
		next := make(map[string]models.MMarketTick, len(old.Ticks)+1)
		for k, v := range old.Ticks {
			next[k] = v
		}
		next[symbol] = tick
		return MarketSnapshot{Ticks: next, Changed: symbol}
	})
}

// -----------------------------------------------------------------------------

// ReplacePortfolio swaps the whole portfolio, positions included.
func (s *Store) ReplacePortfolio(portfolio models.MPortfolio) {
	p := portfolio.Clone()
	s.portfolio.Set(&p)
}

// -----------------------------------------------------------------------------

// UpsertOrder replaces the order with the same id in place, or appends it.
func (s *Store) UpsertOrder(order models.MOrder) {
	s.orders.Update(func(old []models.MOrder) []models.MOrder {
		next := make([]models.MOrder, len(old), len(old)+1)
		copy(next, old)
		for i := range next {
			if next[i].ID == order.ID {
				next[i] = order
				return next
			}
		}
		return append(next, order)
	})
}

// -----------------------------------------------------------------------------

// ReplaceOrders installs a confirmed order list, e.g. from the orders endpoint.
func (s *Store) ReplaceOrders(orders []models.MOrder) {
	next := append([]models.MOrder{}, orders...)
	s.orders.Set(next)
}

// -----------------------------------------------------------------------------
// Readers
// -----------------------------------------------------------------------------

func (s *Store) Tick(symbol string) (models.MMarketTick, bool) {
	tick, ok := s.ticks.Get().Ticks[symbol]
	return tick, ok
}

// -----------------------------------------------------------------------------

// Ticks returns a copy of the latest tick per symbol.
func (s *Store) Ticks() map[string]models.MMarketTick {
	snapshot := s.ticks.Get()
	out := make(map[string]models.MMarketTick, len(snapshot.Ticks))
	for k, v := range snapshot.Ticks {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// Portfolio returns nil until the first portfolio arrives.
func (s *Store) Portfolio() *models.MPortfolio {
	p := s.portfolio.Get()
	if p == nil {
		return nil
	}
	clone := p.Clone()
	return &clone
}

// -----------------------------------------------------------------------------

func (s *Store) Orders() []models.MOrder {
	return append([]models.MOrder{}, s.orders.Get()...)
}

// -----------------------------------------------------------------------------
// Observers
// -----------------------------------------------------------------------------

func (s *Store) ObserveTicks(fn func(MarketSnapshot)) func() {
	return s.ticks.Subscribe(fn)
}

func (s *Store) ObservePortfolio(fn func(*models.MPortfolio)) func() {
	return s.portfolio.Subscribe(fn)
}

func (s *Store) ObserveOrders(fn func([]models.MOrder)) func() {
	return s.orders.Subscribe(fn)
}

// ObserverCount is the number of observers across the three cells.
func (s *Store) ObserverCount() int {
	return s.ticks.ObserverCount() + s.portfolio.ObserverCount() + s.orders.ObserverCount()
}
