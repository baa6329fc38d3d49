package server

import (
	"net/http"

	"github.com/go-gl/mathgl/mgl64"
)

// InspectResponse describes the primary ray through a point of the image
type InspectResponse struct {
	S          float64    `json:"s"` // Horizontal image coordinate, 0 = left
	T          float64    `json:"t"` // Vertical image coordinate, 0 = bottom
	Origin     [3]float64 `json:"origin"`
	Direction  [3]float64 `json:"direction"` // Unit length
	FocusPoint [3]float64 `json:"focusPoint"`
	LensRadius float64    `json:"lensRadius"`
}

// handleInspect returns the pinhole ray through image coordinates (s, t)
// of the most recently rendered frame.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sCoord, err := parseFloatParam(query, "s", 0.5, 0, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tCoord, err := parseFloatParam(query, "t", 0.5, 0, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, ok := s.hub.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}

	basis := stats.Basis
	dir := basis.RayDirection(sCoord, tCoord)
	focus := basis.Origin.Add(dir)
	writeJSON(w, http.StatusOK, InspectResponse{
		S:          sCoord,
		T:          tCoord,
		Origin:     toArray(basis.Origin),
		Direction:  toArray(dir.Normalize()),
		FocusPoint: toArray(focus),
		LensRadius: basis.LensRadius,
	})
}

func toArray(v mgl64.Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}
