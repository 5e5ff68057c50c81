package helper

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// chunkNamespace scopes deterministic chunk IDs to this application.
var chunkNamespace = uuid.MustParse("7f1c2a9e-3b64-4c1d-9e0a-5d8f6b2c4a10")

// ChunkID derives a stable UUID from a chunk's provenance, so re-ingesting an
// unchanged source maps each chunk to the same vector entry.
func ChunkID(source string, rowIndex, chunkIndex int) string {
	name := fmt.Sprintf("%s#%d#%d", source, rowIndex, chunkIndex)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// pretty print
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Msg("Error pretty printing")
	}
	fmt.Println(string(b))
}

// TruncateForLog bounds free-text fields before they hit the logs. Cuts on a
// rune boundary so multi-byte input stays valid UTF-8.
func TruncateForLog(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
