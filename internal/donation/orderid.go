package donation

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const OrderIDPrefix = "DONA-"

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewOrderID returns "DONA-" followed by a ULID. Ids sort by creation time
// and stay unique across processes thanks to the random component.
func NewOrderID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return OrderIDPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
