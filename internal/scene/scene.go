package scene

// Scene owns the single resident model and the background color.
type Scene struct {
	Background Color
	model      *Model
}

// New returns an empty scene with the default background.
func New() *Scene {
	return &Scene{Background: Background}
}

// Attach makes m the resident model. The previous model is disposed before
// m is attached. Attaching the resident model again is a no-op.
func (s *Scene) Attach(m *Model) {
	if s.model == m {
		return
	}
	if s.model != nil {
		s.model.Dispose()
	}
	s.model = m
}

// Model returns the resident model or nil.
func (s *Scene) Model() *Model {
	return s.model
}

// Clear disposes and detaches the resident model.
func (s *Scene) Clear() {
	if s.model != nil {
		s.model.Dispose()
		s.model = nil
	}
}
