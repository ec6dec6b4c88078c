package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Custom epoch: January 1, 2026 00:00:00 UTC.
const epoch int64 = 1767225600000

// Layout: 41 bits of milliseconds since the epoch, 10 bits of node ID,
// 12 bits of per-millisecond sequence. The sign bit stays zero.
const (
	nodeBits     = 10
	sequenceBits = 12

	MaxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits
)

// ID is a snowflake ID. It marshals to JSON as a decimal string so that
// JavaScript clients never round it.
type ID int64

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Accept bare numbers too.
		var n int64
		if nerr := json.Unmarshal(data, &n); nerr != nil {
			return fmt.Errorf("snowflake: cannot unmarshal %s: %w", string(data), err)
		}
		*id = ID(n)
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("snowflake: invalid id string %q: %w", s, err)
	}
	*id = ID(n)
	return nil
}

// Generator produces unique, roughly time-ordered IDs. Safe for concurrent
// use.
type Generator struct {
	mu       sync.Mutex
	node     int64
	sequence int64
	lastTime int64
}

// NewGenerator creates a generator for the given node. Node must be in
// [0, MaxNode]; every process generating IDs needs a distinct node ID.
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > MaxNode {
		return nil, fmt.Errorf("snowflake: node must be between 0 and %d", MaxNode)
	}
	return &Generator{node: node}, nil
}

// Generate returns the next ID.
func (g *Generator) Generate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli() - epoch

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 4096 IDs in one millisecond; wait out the clock.
			for now <= g.lastTime {
				now = time.Now().UnixMilli() - epoch
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTime = now

	return ID(now<<timestampShift | g.node<<nodeShift | g.sequence)
}

// Timestamp returns the wall-clock time embedded in an ID.
func Timestamp(id int64) time.Time {
	return time.UnixMilli((id >> timestampShift) + epoch)
}
