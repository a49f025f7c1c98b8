package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	Count("tx", "symbols", 1632)
	assert.EqualValues(t, 1632, Get("tx", "symbols"))

	Count("tx", "symbols", 3264)
	assert.EqualValues(t, 3264, Get("tx", "symbols"), "republishing overwrites")

	assert.Zero(t, Get("tx", "missing"))
}
