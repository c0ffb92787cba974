package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitFileIDs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	hits := []interface{}{
		map[string]interface{}{"file_id": a.String(), "original_name": "1_方案.pdf"},
		map[string]interface{}{"file_id": b.String()},
		map[string]interface{}{"file_id": "bukan-uuid"},
		map[string]interface{}{"original_name": "tanpa id"},
		"bukan objek",
	}

	ids := hitFileIDs(hits)
	require.Len(t, ids, 2)
	assert.Equal(t, a, ids[0])
	assert.Equal(t, b, ids[1])
}

func TestHitFileIDsEmpty(t *testing.T) {
	assert.Empty(t, hitFileIDs(nil))
	assert.Empty(t, hitFileIDs([]interface{}{}))
}
