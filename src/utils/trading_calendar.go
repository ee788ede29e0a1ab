package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"market-dashboard/src/models"
)

const defaultMIC = "xnys"

// Listing suffix to MIC code (ISO 10383), as understood by scmhub/calendar.
var suffixMICs = []struct {
	suffix string
	mic    string
}{
	{".L", "xlon"},
	{".PA", "xpar"},
	{".DE", "xfra"},
	{".AS", "xams"},
	{".BR", "xbru"},
	{".MI", "xmil"},
	{".MC", "xmad"},
	{".ST", "xsto"},
	{".CO", "xcse"},
	{".HE", "xhel"},
	{".VI", "xwbo"},
	{".SW", "xswx"},
	{".TO", "xtse"},
	{".V", "xtsx"},
	{".T", "xtks"},
	{".HK", "xhkg"},
	{".AX", "xasx"},
	{".KS", "xkrx"},
	{".TW", "xtai"},
	{".SS", "xshg"},
	{".SZ", "xshe"},
}

// TradingCalendar answers open/closed questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol maps a ticker to its exchange by listing suffix. Plain tickers
// are assumed to trade on NYSE.
func MICForSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	for _, s := range suffixMICs {
		if strings.HasSuffix(symbol, s.suffix) {
			return s.mic
		}
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar for mic. When neither mic nor NYSE can be
// loaded the result is a Mon-Fri 09:30-16:00 New York approximation with
// Fallback set.
func GetCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		mic = defaultMIC
		cal = calendar.GetCalendar(mic)
	}

	if cal == nil {
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// Hours reports the session status of symbol at t.
func (tc *TradingCalendar) Hours(symbol string, t time.Time) models.MMarketHours {
	hours := models.MMarketHours{
		Symbol:      symbol,
		MIC:         tc.MIC,
		Open:        tc.IsOpenOnMinute(t),
		TradingDay:  tc.IsTradingDay(t),
		Approximate: tc.Fallback,
	}
	if tc.Timezone != nil {
		hours.Timezone = tc.Timezone.String()
		t = t.In(tc.Timezone)
	}

	// Two weeks covers every holiday cluster on the supported exchanges.
	for i := 1; i <= 14; i++ {
		next := t.AddDate(0, 0, i)
		if tc.IsTradingDay(next) {
			hours.NextTradingDay = next.Format("2006-01-02")
			break
		}
	}
	return hours
}
