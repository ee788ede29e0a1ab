package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"

	"market-dashboard/src/actions"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/notify"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event types pushed to browser views.
const (
	EventInitial      = "INITIAL"
	EventMarketData   = "MARKET_DATA"
	EventPortfolio    = "PORTFOLIO_UPDATE"
	EventOrders       = "ORDERS"
	EventConnection   = "CONNECTION"
	EventNotification = "NOTIFICATION"
)

const broadcastQueueSize = 256

// -----------------------------------------------------------------------------
// GatewayServer
// -----------------------------------------------------------------------------

// Dependencies are the pieces of the dashboard core the gateway exposes.
type Dependencies struct {
	Store    *store.Store
	Session  interfaces.ISession
	Actions  *actions.Actions
	Notifier *notify.Notifier
	Markets  *utils.MarketScheduler
	Gatherer prometheus.Gatherer
}

// GatewayServer serves the dashboard state over REST and pushes every change
// to attached browser views over a WebSocket.
type GatewayServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	server *http.Server

	store    *store.Store
	session  interfaces.ISession
	actions  *actions.Actions
	notifier *notify.Notifier
	markets  *utils.MarketScheduler
	gatherer prometheus.Gatherer

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	broadcast   chan *models.MGatewayEvent
	register    chan *Client
	unregister  chan *Client
	replies     chan clientReply
	done        chan struct{}
	connections atomic.Int64

	unsubscribe []func()
	stopOnce    sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewGatewayServer(cfg *models.MConfig, deps Dependencies, log *logger.Logger) *GatewayServer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GatewayServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		store:      deps.Store,
		session:    deps.Session,
		actions:    deps.Actions,
		notifier:   deps.Notifier,
		markets:    deps.Markets,
		gatherer:   deps.Gatherer,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MGatewayEvent, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan clientReply),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.accessLog(), cors())
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------

// requireConnected rejects controls that only make sense with a live session.
func (s *GatewayServer) requireConnected(c *gin.Context) {
	if !s.session.State().Connected {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "real-time session is not connected"})
		return
	}
	c.Next()
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GatewayServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/connection", s.getConnection)
	api.POST("/connection/connect", s.postConnect)
	api.POST("/connection/disconnect", s.postDisconnect)

	api.GET("/market", s.getMarket)
	api.GET("/market/:symbol", s.getMarketSymbol)
	api.GET("/market/:symbol/hours", s.getMarketHours)
	api.GET("/market/:symbol/candles", s.getCandles)
	api.GET("/tickers", s.getTickers)

	api.GET("/portfolio", s.getPortfolio)
	api.GET("/account", s.getAccount)
	api.GET("/orders", s.getOrders)
	api.POST("/backtest", s.postBacktest)

	api.GET("/notification", s.getNotification)
	api.DELETE("/notification", s.deleteNotification)

	live := api.Group("", s.requireConnected)
	live.POST("/orders", s.postOrder)
	live.DELETE("/orders/:id", s.deleteOrder)
	live.POST("/subscriptions", s.postSubscriptions)
	live.DELETE("/subscriptions", s.deleteSubscriptions)

	if s.gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttpHandler(s.gatherer)))
	}

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mostly for tests.
func (s *GatewayServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start binds the listener, attaches the change observers and serves in the
// background.
func (s *GatewayServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:              lis.Addr().String(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.Logger.Info("Starting gateway on %s", lis.Addr())

	go s.handleWebsockets()
	s.watch()

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("Gateway stopped: %v", err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

// Addr is the bound address once Start succeeded.
func (s *GatewayServer) Addr() string {
	if s.server == nil {
		return ""
	}
	return s.server.Addr
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		for _, unsubscribe := range s.unsubscribe {
			unsubscribe()
		}
		if s.server != nil {
			err = s.server.Shutdown(ctx)
		}
		close(s.done)
	})
	return err
}

// -----------------------------------------------------------------------------

// watch forwards store, session and notification changes to the hub.
// Observers run on the event loop, so Broadcast must never block.
func (s *GatewayServer) watch() {
	s.unsubscribe = append(s.unsubscribe,
		s.store.ObserveTicks(func(snapshot store.MarketSnapshot) {
			s.Broadcast(EventMarketData, snapshot.Ticks[snapshot.Changed])
		}),
		s.store.ObservePortfolio(func(p *models.MPortfolio) {
			s.Broadcast(EventPortfolio, p)
		}),
		s.store.ObserveOrders(func(orders []models.MOrder) {
			s.Broadcast(EventOrders, orders)
		}),
		s.session.Observe(func(state models.MConnectionState) {
			s.Broadcast(EventConnection, state)
		}),
	)
	if s.notifier != nil {
		s.unsubscribe = append(s.unsubscribe, s.notifier.Subscribe(func(n *models.MNotification) {
			s.Broadcast(EventNotification, n)
		}))
	}
}
