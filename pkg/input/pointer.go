package input

// PointerTracker turns absolute cursor positions into look deltas.
// The first position only primes the tracker so the view does not jump.
type PointerTracker struct {
	primed       bool
	lastX, lastY float64
}

// Update records a cursor position and returns the look command for the
// motion since the previous one. ok is false for the priming call and for
// zero motion.
func (pt *PointerTracker) Update(x, y float64) (cmd Command, ok bool) {
	if !pt.primed {
		pt.lastX, pt.lastY = x, y
		pt.primed = true
		return Command{}, false
	}

	dx := x - pt.lastX
	dy := pt.lastY - y // window y grows downwards
	pt.lastX, pt.lastY = x, y

	if dx == 0 && dy == 0 {
		return Command{}, false
	}
	return LookDelta(dx, dy), true
}

// Reset forgets the last position, e.g. after the cursor left the window
func (pt *PointerTracker) Reset() {
	pt.primed = false
}
