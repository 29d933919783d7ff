// Package web exposes a read-only HTTP/WebSocket view over a running
// lsh.MinHashIndex: point-in-time stats, ad-hoc queries, and a live feed
// of insert/query activity for a watch-mode dashboard.
package web

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/corpuskit/lshindex/pkg/lsh"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

// IndexStats is the point-in-time snapshot served at /api/stats.
type IndexStats struct {
	ItemCount    int       `json:"itemCount"`
	Bands        int       `json:"bands"`
	Rows         int       `json:"rows"`
	Threshold    float64   `json:"threshold"`
	StartedAt    time.Time `json:"startedAt"`
	LastInsertAt time.Time `json:"lastInsertAt,omitempty"`
	TotalInserts int64     `json:"totalInserts"`
	TotalQueries int64     `json:"totalQueries"`
}

// Server serves a fiber app backed by a single MinHashIndex. The insert
// counter is updated by calling ObserveInsert from the ingestion pipeline;
// the query counter is updated by the server's own /api/query handler.
// The server itself never mutates the index.
type Server struct {
	app   *fiber.App
	idx   *lsh.MinHashIndex
	mu    sync.RWMutex
	stats IndexStats

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte
}

// NewServer wraps idx in an HTTP/WebSocket server.
func NewServer(idx *lsh.MinHashIndex) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:       app,
		idx:       idx,
		stats:     IndexStats{StartedAt: time.Now()},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 100),
	}

	s.setupRoutes()
	go s.handleBroadcast()

	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())

	api := s.app.Group("/api")
	api.Get("/stats", s.handleStats)
	api.Post("/query", s.handleQuery)
	api.Post("/cluster", s.handleCluster)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))

	s.app.Get("/", s.handleStatus)
}

// handleStatus serves a one-page plaintext summary; there is no SPA here,
// just enough to confirm the server is alive and pointed at an index.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.SendString("lshindex server\nitems: " + itoa(s.stats.ItemCount) + "\nsee /api/stats, /api/query, /api/cluster, /ws\n")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	s.mu.RLock()
	snap := s.stats
	snap.ItemCount = s.idx.Len()
	s.mu.RUnlock()
	return c.JSON(snap)
}

// queryRequest is the wire shape for /api/query: a signature expressed as
// its lane values, since the server has no tokenizer of its own.
type queryRequest struct {
	Width uint8    `json:"width"`
	Lanes []uint64 `json:"lanes"`
	TopK  int      `json:"topK"`
}

type queryResponse struct {
	Matches []lsh.ScoredID `json:"matches"`
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	sig := lsh.Signature{Width: lsh.Width(req.Width), Lanes: req.Lanes}

	k := req.TopK
	if k <= 0 {
		k = 10
	}
	matches, err := s.idx.QueryTopK(sig, k)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.observeQuery()
	return c.JSON(queryResponse{Matches: matches})
}

type clusterRequest struct {
	IDs []lsh.ID `json:"ids"`
}

func (s *Server) handleCluster(c *fiber.Ctx) error {
	var req clusterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	groups, err := s.idx.Cluster(req.IDs)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		c.Close()
	}()

	s.mu.RLock()
	data, _ := json.Marshal(map[string]interface{}{"type": "stats", "data": s.stats})
	s.mu.RUnlock()
	c.WriteMessage(websocket.TextMessage, data)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for msg := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

// ObserveInsert records that an item was inserted into the index and
// pushes an updated stats snapshot to any connected WebSocket clients.
// Call this from the ingestion pipeline right after a successful Insert.
func (s *Server) ObserveInsert(id lsh.ID) {
	s.mu.Lock()
	s.stats.TotalInserts++
	s.stats.LastInsertAt = time.Now()
	s.stats.ItemCount = s.idx.Len()
	snap := s.stats
	s.mu.Unlock()

	s.broadcastStats(snap)
}

func (s *Server) observeQuery() {
	s.mu.Lock()
	s.stats.TotalQueries++
	snap := s.stats
	s.mu.Unlock()

	s.broadcastStats(snap)
}

func (s *Server) broadcastStats(snap IndexStats) {
	data, _ := json.Marshal(map[string]interface{}{"type": "stats", "data": snap})
	select {
	case s.broadcast <- data:
	default:
	}
}

// Start serves the app at addr, blocking until Stop is called or an
// unrecoverable listen error occurs.
func (s *Server) Start(addr string) error {
	log.Printf("[*] lshindex server listening at http://localhost%s\n", addr)
	return s.app.Listen(addr)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	return s.app.Shutdown()
}
