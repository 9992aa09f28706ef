package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPicker_DefaultPool(t *testing.T) {
	p := NewPicker()
	pool := make(map[string]struct{}, len(defaultWords))
	for _, w := range defaultWords {
		pool[w] = struct{}{}
	}

	for i := 0; i < 100; i++ {
		w := p.Pick()
		assert.NotEmpty(t, w)
		assert.Contains(t, pool, w)
	}
}

func TestPicker_CustomWords(t *testing.T) {
	p := NewPicker("one", "two")
	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{"one", "two"}, p.Pick())
	}
}

func TestPicker_SingleWord(t *testing.T) {
	p := NewPicker("only")
	assert.Equal(t, "only", p.Pick())
}
