package job

import (
	"fmt"
	"hash/fnv"
)

// ShardLabel hashes a topic to a stable small cardinality metric label (0-31).
func ShardLabel(topic string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(topic))
	return fmt.Sprintf("%d", h.Sum32()%32)
}
