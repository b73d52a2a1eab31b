package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubset(t *testing.T) {
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name       string
		start, end int
		want       []int
	}{
		{"first five", 0, 5, []int{0, 1, 2, 3, 4}},
		{"clamped tail", 8, 20, []int{8, 9}},
		{"start past end", 12, 20, []int{}},
		{"inverted", 5, 3, []int{}},
		{"negative start", -3, 2, []int{0, 1}},
		{"whole", 0, 10, seq},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subset(seq, tt.start, tt.end))
		})
	}
}

func TestSubsetDoesNotAliasAppend(t *testing.T) {
	seq := []int{1, 2, 3, 4}
	head := Subset(seq, 0, 2)
	head = append(head, 99)
	assert.Equal(t, []int{1, 2, 3, 4}, seq)
	assert.Equal(t, []int{1, 2, 99}, head)
}
