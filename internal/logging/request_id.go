package logging

import (
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var requestIDCounter uint64

// GenerateRequestID returns an ID of the form timestamp-counter-random,
// for example "65d1a2b0-0001-a1b2c3d4".
func GenerateRequestID() string {
	ts := time.Now().Unix()
	counter := atomic.AddUint64(&requestIDCounter, 1)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return formatRequestID(ts, counter, random)
}

func formatRequestID(ts int64, counter uint64, random string) string {
	return hex.EncodeToString([]byte{
		byte(ts >> 24), byte(ts >> 16), byte(ts >> 8), byte(ts),
	}) + "-" + formatCounter(counter) + "-" + random
}

// formatCounter renders the low 16 bits of the counter.
func formatCounter(counter uint64) string {
	return hex.EncodeToString([]byte{
		byte(counter >> 8), byte(counter),
	})
}
