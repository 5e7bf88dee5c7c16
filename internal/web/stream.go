package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/colonyops/toaster/internal/toaster"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 4096
)

// Client frame types.
const (
	FramePause  = "pause"
	FrameResume = "resume"
	FrameHeight = "height"
)

// ClientFrame is a message sent by a WebSocket client to control its surface.
type ClientFrame struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Height int    `json:"height,omitempty"`
}

// stream is one WebSocket client mounted on a surface.
type stream struct {
	conn    *websocket.Conn
	surface *toaster.Surface
	updates chan toaster.Snapshot
	done    chan struct{}
	once    sync.Once
	paused  bool // guarded by Server.mu
}

// push queues snap for the writer, replacing any snapshot not yet written.
func (st *stream) push(snap toaster.Snapshot) {
	for {
		select {
		case st.updates <- snap:
			return
		default:
		}
		select {
		case <-st.updates:
		default:
		}
	}
}

func (st *stream) close() {
	st.once.Do(func() {
		close(st.done)
		_ = st.conn.Close()
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	key := surfaceKey(r)
	reverse, _ := strconv.ParseBool(r.URL.Query().Get("reverse"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Ctx(r.Context()).Err(err).Msg("websocket upgrade failed")
		return
	}

	st := &stream{
		conn:    conn,
		updates: make(chan toaster.Snapshot, 1),
		done:    make(chan struct{}),
	}
	st.surface = s.reg.Mount(key, st.push)
	st.push(st.surface.Snapshot())

	s.mu.Lock()
	s.streams[st] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug().Ctx(r.Context()).Msg("stream opened")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(st, s.offsetOptions(key, reverse))
	}()

	s.readLoop(st, key)

	st.surface.Close()
	st.close()
	wg.Wait()

	// A client that disconnects while hovering must not freeze the surface.
	s.leave(st, key, false)

	s.mu.Lock()
	delete(s.streams, st)
	s.mu.Unlock()

	s.logger.Debug().Ctx(r.Context()).Msg("stream closed")
}

func (s *Server) writeLoop(st *stream, opts toaster.OffsetOptions) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	var (
		last uint64
		sent bool
	)
	for {
		select {
		case <-st.done:
			return
		case snap := <-st.updates:
			if sent && snap.Version <= last {
				continue
			}
			last, sent = snap.Version, true

			_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := st.conn.WriteJSON(newSurfaceView(snap, opts)); err != nil {
				st.close()
				return
			}
		case <-ticker.C:
			if err := st.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				st.close()
				return
			}
		}
	}
}

// readLoop applies client frames until the connection fails or is closed.
func (s *Server) readLoop(st *stream, key string) {
	pongWait := 2 * s.cfg.PingInterval

	st.conn.SetReadLimit(maxFrameSize)
	_ = st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := st.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = st.conn.SetReadDeadline(time.Now().Add(pongWait))

		var f ClientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Debug().Err(err).Str("surface", key).Msg("invalid client frame")
			continue
		}

		switch f.Type {
		case FramePause:
			s.hover(st, key)
		case FrameResume:
			s.leave(st, key, true)
		case FrameHeight:
			if f.ID != "" && f.Height >= 0 {
				s.reg.UpdateHeight(key, f.ID, f.Height)
			}
		default:
			s.logger.Debug().Str("surface", key).Str("type", f.Type).Msg("unknown client frame")
		}
	}
}

// hover marks st as hovering key and pauses the surface.
func (s *Server) hover(st *stream, key string) {
	s.mu.Lock()
	if !st.paused {
		st.paused = true
		s.hovering[key]++
	}
	s.mu.Unlock()

	s.reg.Pause(key)
}

// leave ends the hover of st. The surface resumes once no stream hovers it;
// explicit asks to resume even when st was not hovering.
func (s *Server) leave(st *stream, key string, explicit bool) {
	s.mu.Lock()
	wasPaused := st.paused
	if wasPaused {
		st.paused = false
		s.hovering[key]--
		if s.hovering[key] <= 0 {
			delete(s.hovering, key)
		}
	}
	remaining := s.hovering[key]
	s.mu.Unlock()

	if remaining == 0 && (wasPaused || explicit) {
		s.reg.Resume(key)
	}
}
