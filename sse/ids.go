package sse

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator returns a new identifier on every call. Sources use it once
// for their connection id and again for every payload they send.
type IDGenerator func() string

// NewCounter returns a generator yielding "1", "2", "3", ...
func NewCounter() IDGenerator {
	var n atomic.Uint64
	return func() string {
		return strconv.FormatUint(n.Add(1), 10)
	}
}

// UUIDGenerator yields random (version 4) UUIDs.
func UUIDGenerator() string {
	return uuid.NewString()
}

// defaultIDs is shared by every source created without a generator, so ids
// stay unique across connections in this process.
var defaultIDs = NewCounter()
