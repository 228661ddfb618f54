package server

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"product-viewer/internal/postprocess"
	"product-viewer/internal/viewer"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsSink presents frames as binary WebP messages and status as JSON text.
// Only the session goroutine writes.
type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) Frame(img *image.NRGBA) error {
	data, err := postprocess.WebP(img)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s wsSink) Status(st viewer.Status) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(st)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	in, err := s.input(r, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := s.log.With().Int("product", p.ID).Str("mode", string(in.Mode)).Logger()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	v := viewer.New(in, s.opts.Viewer)
	session := viewer.NewSession(v, wsSink{conn: conn}, log)

	// reader: decode events in order and hand them to the owner
	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ev, err := viewer.ParseEvent(data)
			if err != nil {
				log.Debug().Err(err).Msg("dropped event")
				continue
			}
			if err := session.Send(ctx, ev); err != nil {
				return
			}
		}
	}()

	log.Debug().Msg("session started")
	if err := session.Run(ctx); err != nil {
		log.Debug().Err(err).Msg("session ended")
	}
}
