// Package server pushes visibility-filtered world snapshots to connected
// players over WebSocket. It is a consumer of the simulation core, not part
// of it: the core guarantees snapshots reflect the just-completed tick, and
// this package only moves them.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftcore/riftcore/internal/config"
	"github.com/riftcore/riftcore/internal/core/events"
	"github.com/riftcore/riftcore/internal/core/game"
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/pkg/generic"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type session struct {
	id   string
	side model.Side
	conn *websocket.Conn
}

// Server owns the client sessions of one game instance and broadcasts a
// per-side snapshot after every tick.
type Server struct {
	log   *zap.Logger
	cfg   config.ServerConfig
	world *game.World

	mu       sync.Mutex
	sessions map[string]*session

	bufPool *generic.Pool[*bytes.Buffer]
	tickSub *events.Subscription
}

// New creates a snapshot server over the given world.
func New(log *zap.Logger, cfg config.ServerConfig, w *game.World) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:      log,
		cfg:      cfg,
		world:    w,
		sessions: make(map[string]*session),
		bufPool:  generic.NewPool(func() *bytes.Buffer { return &bytes.Buffer{} }),
	}
}

// Run serves the WebSocket endpoint until ctx is cancelled. It also hooks the
// world's tick.completed event; the broadcast handler runs in the tick
// goroutine, so it only reads fully resolved tick state.
func (s *Server) Run(ctx context.Context) error {
	s.tickSub = s.world.Events().Subscribe(game.EventTickCompleted, func(events.Event) error {
		s.broadcast()
		return nil
	})
	defer s.tickSub.Cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	httpSrv := &http.Server{Addr: s.cfg.ListenAddr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := httpSrv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	s.log.Info("snapshot feed listening", zap.String("addr", s.cfg.ListenAddr))
	return g.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sideParam, err := strconv.Atoi(r.URL.Query().Get("side"))
	if err != nil || sideParam < 0 || sideParam > 1 {
		http.Error(w, "side must be 0 or 1", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := &session{
		id:   uuid.NewString(),
		side: model.Side(sideParam),
		conn: conn,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.log.Info("client connected",
		zap.String("session", sess.id),
		zap.Uint8("side", uint8(sess.side)))

	// Drain inbound frames; this feed is one-way, the read loop only detects
	// disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(sess.id)
				return
			}
		}
	}()
}

func (s *Server) drop(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if ok {
		_ = sess.conn.Close()
		s.log.Info("client disconnected", zap.String("session", id))
	}
}

// SessionCount returns the number of connected clients.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// broadcast encodes one snapshot per side and writes it to that side's
// sessions. Runs in the tick goroutine.
func (s *Server) broadcast() {
	s.mu.Lock()
	if len(s.sessions) == 0 {
		s.mu.Unlock()
		return
	}
	bySide := [2][]*session{}
	for _, sess := range s.sessions {
		bySide[sess.side] = append(bySide[sess.side], sess)
	}
	s.mu.Unlock()

	for side := 0; side < 2; side++ {
		if len(bySide[side]) == 0 {
			continue
		}
		buf := s.bufPool.Get()
		buf.Reset()
		snap := BuildSnapshot(s.world, model.Side(side))
		if err := json.NewEncoder(buf).Encode(snap); err != nil {
			s.log.Error("snapshot encode failed", zap.Error(err))
			s.bufPool.Put(buf)
			continue
		}
		payload := buf.Bytes()
		for _, sess := range bySide[side] {
			deadline := time.Now().Add(s.cfg.WriteTimeout.Std())
			_ = sess.conn.SetWriteDeadline(deadline)
			if err := sess.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.drop(sess.id)
			}
		}
		s.bufPool.Put(buf)
	}
}
