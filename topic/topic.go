package topic

import "math/rand"

// Default prompt pool for newly created rooms.
var defaultWords = []string{
	"lighthouse", "submarine", "volcano", "penguin", "cactus",
	"telescope", "waterfall", "dragon", "bicycle", "igloo",
	"jellyfish", "windmill", "pirate", "comet", "mushroom",
	"robot", "tornado", "castle", "walrus", "campfire",
	"glacier", "accordion", "scarecrow", "anchor", "hammock",
}

// Picker selects a random topic word for each new room.
type Picker struct {
	words []string
}

// NewPicker returns a Picker over the given words, or the default pool when
// none are supplied.
func NewPicker(words ...string) *Picker {
	if len(words) == 0 {
		words = defaultWords
	}
	return &Picker{words: words}
}

// Pick returns one word from the pool.
func (p *Picker) Pick() string {
	return p.words[rand.Intn(len(p.words))]
}
