package game

// nearbyPlayers returns the other alive players within radius of self,
// boundary included.
func nearbyPlayers(self *Session, players map[string]*Session, radius float64) []*Session {
	r2 := radius * radius
	var result []*Session
	for _, s := range players {
		if s == self || !s.Alive {
			continue
		}
		if dist2(self.Pos, s.Pos) <= r2 {
			result = append(result, s)
		}
	}
	return result
}

// nearbyPellets returns every second pellet, in field order, of those within
// radius of center. Which half is sent shifts as the field changes.
func nearbyPellets(center Point, pellets []Pellet, radius float64) []Pellet {
	r2 := radius * radius
	var result []Pellet
	seen := 0
	for _, p := range pellets {
		if dist2(center, p.Pos) > r2 {
			continue
		}
		if seen%2 == 0 {
			result = append(result, p)
		}
		seen++
	}
	return result
}
