package game

import (
	"math"
	"sort"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// buildLeaderboard returns the top n alive players by mass
func buildLeaderboard(players map[string]*Session, n int) []protocol.BoardEntry {
	alive := make([]*Session, 0, len(players))
	for _, s := range players {
		if s.Alive {
			alive = append(alive, s)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool {
		return alive[i].Mass > alive[j].Mass
	})
	if len(alive) > n {
		alive = alive[:n]
	}
	entries := make([]protocol.BoardEntry, len(alive))
	for i, s := range alive {
		entries[i] = protocol.BoardEntry{ID: s.ID, Name: s.Name, Mass: int(math.Round(s.Mass))}
	}
	return entries
}
