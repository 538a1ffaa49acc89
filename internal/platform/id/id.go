package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"hostnav/internal/platform/clock"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// TimeOrdered prefixes a random suffix with the creation time so identifiers
// sort in creation order.
type TimeOrdered struct {
	Clock clock.Clock
}

func (g TimeOrdered) New() string {
	clk := g.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%016x%s", clk.Now().UnixNano(), hex.EncodeToString(buf))
}
