// Package previewsrv serves a debug preview of a live capture.Stream over a
// WebSocket: connect, and receive JPEG-encoded frames at a fixed cadence
// until you disconnect. It exists for development/diagnostics (watching what
// a capture session sees without a full host UI), not for the library's
// public surface.
package previewsrv

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Nu-Pan/aynime-capture/internal/capture"
	"github.com/Nu-Pan/aynime-capture/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	defaultJPEGQuality = 70
)

var log = logging.L("previewsrv")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 64,
	CheckOrigin:     func(r *http.Request) bool { return true }, // localhost debug tool, not internet-facing
}

// Server polls a Stream at a fixed cadence, JPEG-encodes each frame, and
// fans it out to every connected WebSocket client.
type Server struct {
	stream  *capture.Stream
	fps     float64
	quality int

	httpServer *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}

	stopPoll chan struct{}
	wg       sync.WaitGroup
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New builds a preview server bound to stream, sampling at fps (defaulting
// to 15 when <= 0) and encoding at JPEG quality q (defaulting to 70 when
// out of [1,100]).
func New(stream *capture.Stream, addr string, fps float64, quality int) *Server {
	if fps <= 0 {
		fps = 15
	}
	if quality < 1 || quality > 100 {
		quality = defaultJPEGQuality
	}

	s := &Server{
		stream:   stream,
		fps:      fps,
		quality:  quality,
		clients:  make(map[*client]struct{}),
		stopPoll: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving HTTP (in a goroutine) and polling the stream for
// frames to broadcast. Returns immediately; errors from ListenAndServe are
// logged, not returned, matching the teacher's fire-and-forget server start.
func (s *Server) Start() {
	s.wg.Add(1)
	go s.pollLoop()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("preview server stopped", "error", err)
		}
	}()
}

// Stop closes every client connection, stops the poll loop, and shuts down
// the HTTP server.
func (s *Server) Stop(ctx context.Context) {
	close(s.stopPoll)
	s.wg.Wait()

	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		c.conn.Close()
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 4)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	log.Info("preview client connected", "remote", r.RemoteAddr)

	go s.writePump(c)
	s.readPump(c)
}

// readPump exists only to notice the client going away (preview is
// send-only); any inbound message is discarded.
func (s *Server) readPump(c *client) {
	defer s.removeClient(c)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.sampleAndBroadcast()
		}
	}
}

func (s *Server) sampleAndBroadcast() {
	w, h, buf, ok, err := s.stream.GetFrameByTime(0)
	if err != nil {
		log.Warn("preview sample failed", "error", err)
		return
	}
	if !ok {
		return
	}

	jpegData, err := encodeBGRJPEG(w, h, buf, s.quality)
	if err != nil {
		log.Warn("preview JPEG encode failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- jpegData:
		default:
			// Slow client: drop this frame rather than block the broadcast.
		}
	}
}

// encodeBGRJPEG converts a packed BGR (3 bytes/pixel) buffer — Readback's
// output shape — into a JPEG, going through image.RGBA since image/jpeg has
// no BGR source format.
func encodeBGRJPEG(width, height int, bgr []byte, quality int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	n := width * height
	for px := 0; px < n; px++ {
		srcOff := px * 3
		dstOff := px * 4
		img.Pix[dstOff+0] = bgr[srcOff+2] // R
		img.Pix[dstOff+1] = bgr[srcOff+1] // G
		img.Pix[dstOff+2] = bgr[srcOff+0] // B
		img.Pix[dstOff+3] = 0xFF
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
