package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

var idSeq uint64

// GenID returns a message/status id built from a nanosecond timestamp and a
// process-local counter so ids sort in creation order alongside store keys.
func GenID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("msg-%d-%d", n, s)
}
