package server

import (
	"context"
	"net/http"
	"strconv"

	"product-viewer/internal/postprocess"
	"product-viewer/internal/spin"
	"product-viewer/internal/viewer"
)

// maxSettleTicks bounds the easing steps a snapshot waits for.
const maxSettleTicks = 600

// handleSnapshot renders one settled frame. Query parameters: mode, view,
// angle (degrees), color, flip (axes, e.g. "xz").
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	in, err := s.input(r, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.AutoRotate = false

	q := r.URL.Query()
	var angle float64
	if a := q.Get("angle"); a != "" {
		if angle, err = strconv.ParseFloat(a, 64); err != nil {
			http.Error(w, "bad angle", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.SettleTimeout)
	defer cancel()
	v := viewer.New(in, s.opts.Viewer)
	defer v.Close()
	if err := viewer.Settle(ctx, v); err != nil {
		http.Error(w, "viewer did not settle", http.StatusGatewayTimeout)
		return
	}

	var events []viewer.Event
	if view := q.Get("view"); view != "" {
		events = append(events, viewer.Event{Type: viewer.EventView, View: view})
	}
	for _, axis := range q.Get("flip") {
		events = append(events, viewer.Event{Type: viewer.EventFlip, Axis: string(axis)})
	}
	if c := q.Get("color"); c != "" {
		events = append(events, viewer.Event{Type: viewer.EventColor, Color: c})
	}
	if angle != 0 {
		events = append(events, s.dragFor(v.Input(), angle)...)
	}
	for _, ev := range events {
		v.Handle(ctx, ev)
	}
	for i := 0; i < maxSettleTicks && v.Animating(); i++ {
		v.Tick()
	}

	data, err := postprocess.WebP(v.Render())
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot encode failed")
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// dragFor returns the horizontal drag that turns the view by angle degrees.
func (s *Server) dragFor(in viewer.Input, angle float64) []viewer.Event {
	var dx float64
	if in.Mode == viewer.ModeModel {
		// a drag across the full viewport height is one turn
		dx = -angle / 360 * float64(in.Height)
	} else {
		sens := s.opts.Viewer.Spin.RotationSensitivity
		if sens == 0 {
			sens = spin.DefaultRotationSensitivity
		}
		dx = angle / sens
	}
	// the pointer rests before release so the camera does not coast past angle
	return []viewer.Event{
		{Type: viewer.EventPointerDown},
		{Type: viewer.EventPointerMove, X: dx},
		{Type: viewer.EventPointerMove, X: dx},
		{Type: viewer.EventPointerUp},
	}
}
