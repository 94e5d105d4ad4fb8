package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Subsequent calls are no-ops.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new int64 ID. IDs are ordered by creation time.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns New rendered in base 10, the form persisted records use.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
