package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, EscapeLike(`50% off_now \ ok`))
	assert.Equal(t, `%roof\_leak%`, Contains("Roof_Leak"))
}

func TestMaxSuffix(t *testing.T) {
	numbers := []string{"Q-2026-10-0001", "Q-2026-10-0003", "Q-2026-10-x", "Q-2026-09-0009"}
	assert.Equal(t, 3, MaxSuffix(numbers, "Q-2026-10-"))
	assert.Equal(t, 0, MaxSuffix(nil, "Q-2026-10-"))
	assert.Equal(t, 1000, MaxSuffix([]string{"J-2026-999", "J-2026-1000"}, "J-2026-"))
}
