package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *GatewayServer) getHealth(c *gin.Context) {
	state := s.session.State()

	var latest int64
	for _, tick := range s.store.Ticks() {
		if tick.Timestamp > latest {
			latest = tick.Timestamp
		}
	}

	body := gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"session":       state.Phase,
		"connected":     state.Connected,
		"latest_update": latest,
		"observers":     s.store.ObserverCount(),
	}
	if s.markets != nil {
		body["markets_open"] = s.markets.AnyMarketOpen()
	}
	c.JSON(http.StatusOK, body)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getConnection(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.State())
}

func (s *GatewayServer) postConnect(c *gin.Context) {
	s.session.Connect()
	c.JSON(http.StatusAccepted, gin.H{"status": "connecting"})
}

func (s *GatewayServer) postDisconnect(c *gin.Context) {
	s.session.Disconnect()
	c.JSON(http.StatusAccepted, gin.H{"status": "disconnecting"})
}

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

func (s *GatewayServer) getMarket(c *gin.Context) {
	c.JSON(http.StatusOK, filterTicks(s.store.Ticks(), parseSymbols(c.Query("symbols"))))
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getMarketSymbol(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	tick, ok := s.store.Tick(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no market data for " + symbol})
		return
	}
	c.JSON(http.StatusOK, tick)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getMarketHours(c *gin.Context) {
	if s.markets == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "market calendars are not loaded"})
		return
	}
	c.JSON(http.StatusOK, s.markets.Hours(strings.ToUpper(c.Param("symbol"))))
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getCandles(c *gin.Context) {
	candles, err := s.actions.LoadMarketData(c.Request.Context(), strings.ToUpper(c.Param("symbol")), c.DefaultQuery("timeframe", "1d"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getTickers(c *gin.Context) {
	tickers, err := s.actions.LoadSupportedTickers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickers": tickers})
}

// -----------------------------------------------------------------------------
// Portfolio / orders
// -----------------------------------------------------------------------------

func (s *GatewayServer) getPortfolio(c *gin.Context) {
	portfolio := s.store.Portfolio()
	if portfolio == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio not loaded yet"})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getAccount(c *gin.Context) {
	info, err := s.actions.LoadAccountInfo(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Orders())
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) postOrder(c *gin.Context) {
	var req models.MOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.actions.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) deleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := s.actions.CancelOrder(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "status": "cancel_requested"})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) postBacktest(c *gin.Context) {
	var req models.MBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.actions.RunBacktest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

func (s *GatewayServer) postSubscriptions(c *gin.Context) {
	var req models.MSymbolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.Subscribe(req.Symbols)
	c.JSON(http.StatusAccepted, gin.H{"subscribed": req.Symbols})
}

func (s *GatewayServer) deleteSubscriptions(c *gin.Context) {
	var req models.MSymbolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.Unsubscribe(req.Symbols)
	c.JSON(http.StatusAccepted, gin.H{"unsubscribed": req.Symbols})
}

// -----------------------------------------------------------------------------
// Notification
// -----------------------------------------------------------------------------

func (s *GatewayServer) getNotification(c *gin.Context) {
	if s.notifier == nil {
		c.Status(http.StatusNoContent)
		return
	}
	note, ok := s.notifier.Current()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *GatewayServer) deleteNotification(c *gin.Context) {
	if s.notifier != nil {
		s.notifier.Clear()
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------

func promhttpHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
