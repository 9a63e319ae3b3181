package game

// integrate advances every alive player by one tick: move by velocity, decay
// velocity by the per-tick friction factor, clamp to the world rectangle
// shrunk by the margin. dt is the tick length in seconds.
func (r *Room) integrate(dt float64) {
	w := r.cfg.World
	for _, s := range r.Players {
		if !s.Alive {
			continue
		}
		s.Pos.X += s.Vel.X * dt
		s.Pos.Y += s.Vel.Y * dt
		s.Vel.X *= w.Friction
		s.Vel.Y *= w.Friction
		s.Pos.X = clamp(s.Pos.X, w.Margin, w.Width-w.Margin)
		s.Pos.Y = clamp(s.Pos.Y, w.Margin, w.Height-w.Margin)
	}
}
