package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// statusFor maps a request failure to the status the gateway answers with.
// Backend 4xx answers pass through; everything else is a bad gateway.
func statusFor(err error) int {
	if helpers.IsValidation(err) {
		return http.StatusBadRequest
	}
	var reqErr *helpers.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode >= 400 && reqErr.StatusCode < 500 {
		return reqErr.StatusCode
	}
	return http.StatusBadGateway
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// parseSymbols splits a comma separated query value.
func parseSymbols(raw string) []string {
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			symbols = append(symbols, strings.ToUpper(part))
		}
	}
	return symbols
}

// -----------------------------------------------------------------------------

// filterTicks keeps the requested symbols; no symbols means all of them.
func filterTicks(ticks map[string]models.MMarketTick, symbols []string) map[string]models.MMarketTick {
	if len(symbols) == 0 {
		return ticks
	}
	return selectTicks(ticks, func(sym string) bool { return contains(symbols, sym) })
}

func selectTicks(ticks map[string]models.MMarketTick, keep func(string) bool) map[string]models.MMarketTick {
	selected := make(map[string]models.MMarketTick, len(ticks))
	for sym, tick := range ticks {
		if keep(sym) {
			selected[sym] = tick
		}
	}
	return selected
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
