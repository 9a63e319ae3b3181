package game

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// Pellet is a stationary consumable point
type Pellet struct {
	ID  string
	Pos Point
}

func (p Pellet) toDTO() protocol.Pellet {
	return protocol.Pellet{ID: p.ID, X: roundTo1(p.Pos.X), Y: roundTo1(p.Pos.Y)}
}

// seededRand expands a seed string into a deterministic PRNG. Equal seeds
// produce equal sequences.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// pelletField is a room's ordered pellet collection. Order matters: removal
// shifts later pellets down and the interest manager samples by index.
type pelletField struct {
	items  []Pellet
	target int
	world  config.WorldConfig
	nextID int
}

// newPelletField lays out target pellets from seed
func newPelletField(seed string, target int, world config.WorldConfig) *pelletField {
	f := &pelletField{
		items:  make([]Pellet, 0, target),
		target: target,
		world:  world,
	}
	rng := seededRand(seed)
	for n := 0; n < target; n++ {
		f.items = append(f.items, f.spawn(rng))
	}
	return f
}

func (f *pelletField) spawn(rng *rand.Rand) Pellet {
	f.nextID++
	w := f.world
	return Pellet{
		ID: fmt.Sprintf("p%d", f.nextID),
		Pos: Point{
			X: w.Margin + rng.Float64()*(w.Width-2*w.Margin),
			Y: w.Margin + rng.Float64()*(w.Height-2*w.Margin),
		},
	}
}

// removeAt deletes the pellet at index i, keeping the order of the rest
func (f *pelletField) removeAt(i int) {
	f.items = append(f.items[:i], f.items[i+1:]...)
}

// replenish appends random pellets until the field is back at its target
func (f *pelletField) replenish(rng *rand.Rand) int {
	added := 0
	for len(f.items) < f.target {
		f.items = append(f.items, f.spawn(rng))
		added++
	}
	return added
}

func (f *pelletField) size() int {
	return len(f.items)
}
