// Package metric publishes chain throughput counters via expvar.
package metric

import (
	"expvar"
	"fmt"
)

const buffersLabel = "leansdr.buffers"

var buffers = expvar.NewMap(buffersLabel)

// Count publishes the cumulative number of elements committed to a buffer.
// Values are keyed by scheduler and buffer name and overwrite previous
// publications for the same buffer.
func Count(scheduler, buffer string, elements uint64) {
	key := fmt.Sprintf("%s.%s", scheduler, buffer)
	v := new(expvar.Int)
	v.Set(int64(elements))
	buffers.Set(key, v)
}

// Get returns the published counter for a buffer, or 0 if none exists.
func Get(scheduler, buffer string) uint64 {
	v := buffers.Get(fmt.Sprintf("%s.%s", scheduler, buffer))
	if v == nil {
		return 0
	}
	return uint64(v.(*expvar.Int).Value())
}
