// internals/search/searcher.go
package search

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
)

// FileDoc adalah dokumen yang diindeks per file: metadata + teks hasil
// ekstraksi (bila ada).
type FileDoc struct {
	FileID       string `json:"file_id"`
	ProjectID    string `json:"project_id"`
	OriginalName string `json:"original_name"`
	Content      string `json:"content"`
}

type Query struct {
	Text      string
	ProjectID *uuid.UUID
	Limit     int
}

// Searcher: backend pencarian file. Implementasi meili menyediakan
// full-text; fallback LIKE hanya mencocokkan substring.
type Searcher interface {
	IndexFile(doc FileDoc)
	RemoveFile(fileID uuid.UUID)
	SearchFiles(q Query) ([]uuid.UUID, error)
	// Capability: true bila backend mendukung pencarian isi dokumen.
	SupportsContentSearch() bool
}

// New memilih backend dari konfigurasi. Meili yang tidak reachable saat
// start tetap dipakai; health monitor akan memulihkannya.
func New(db *gorm.DB) Searcher {
	if configs.SearchBackend == "meili" && configs.MeiliHost != "" {
		log.Println("[INFO] search backend: meilisearch")
		return NewMeili(configs.MeiliHost, configs.MeiliAPIKey)
	}
	log.Println("[INFO] search backend: LIKE fallback")
	return NewLike(db)
}
