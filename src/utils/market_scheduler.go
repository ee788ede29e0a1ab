package utils

import (
	"sync"
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// MarketScheduler keeps one calendar per exchange for the tracked symbols.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar // by symbol
	Logger    *logger.Logger

	byMIC map[string]*TradingCalendar
	mu    sync.RWMutex
	now   func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.NewNopLogger()
	}
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		byMIC:     make(map[string]*TradingCalendar),
		now:       time.Now,
	}
	ms.UpdateSymbols(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the tracked symbol set. Calendars already loaded
// are reused.
func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar, len(symbols))
	for _, symbol := range symbols {
		ms.Calendars[symbol] = ms.calendarLocked(symbol)
	}

	ms.Logger.Info("MarketScheduler: Mapped %d symbols to %d calendars.", len(symbols), len(ms.byMIC))
}

// -----------------------------------------------------------------------------

func (ms *MarketScheduler) calendarLocked(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)
	if cal, ok := ms.byMIC[mic]; ok {
		return cal
	}

	cal := GetCalendar(mic)
	if cal.Fallback {
		ms.Logger.Warning("Failed to load calendar for MIC '%s', using Mon-Fri 09:30-16:00 New York hours", mic)
	}
	ms.byMIC[mic] = cal
	return cal
}

// -----------------------------------------------------------------------------

// Hours reports the current session of symbol, tracked or not.
func (ms *MarketScheduler) Hours(symbol string) models.MMarketHours {
	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()

	if !ok {
		ms.mu.Lock()
		cal = ms.calendarLocked(symbol)
		ms.mu.Unlock()
	}
	return cal.Hours(symbol, ms.now())
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if any tracked market is currently open.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.byMIC {
		if !ms.tracked(cal) {
			continue
		}
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}

func (ms *MarketScheduler) tracked(cal *TradingCalendar) bool {
	for _, c := range ms.Calendars {
		if c == cal {
			return true
		}
	}
	return false
}
