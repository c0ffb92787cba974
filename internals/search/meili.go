// internals/search/meili.go
package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
)

const idxFiles = "pmhub_files"

// Meili mengimplementasikan Searcher lewat Meilisearch. Indexing bersifat
// fire-and-forget; baris DB tetap source of truth.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))
	m := &Meili{client: client, done: make(chan struct{})}

	if _, err := client.Health(); err != nil {
		log.Printf("[WARN] meilisearch %s tidak reachable: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxFiles,
		PrimaryKey: "file_id",
	}); err != nil {
		log.Printf("[WARN] create index %s (mungkin sudah ada): %v", idxFiles, err)
	}

	index := m.client.Index(idxFiles)
	filterable := []string{"project_id"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("[WARN] update filterable attrs: %v", err)
	}
	searchable := []string{"original_name", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("[WARN] update searchable attrs: %v", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("[INFO] meilisearch pulih, konfigurasi ulang index")
				m.configureIndex()
			}
		}
	}
}

func (m *Meili) Close() { close(m.done) }

func (m *Meili) Healthy() bool { return m.healthy.Load() }

func (m *Meili) SupportsContentSearch() bool { return true }

func (m *Meili) IndexFile(doc FileDoc) {
	if !m.healthy.Load() {
		return
	}
	go func() {
		if _, err := m.client.Index(idxFiles).AddDocuments([]FileDoc{doc}); err != nil {
			log.Printf("[ERROR] index file %s: %v", doc.FileID, err)
		}
	}()
}

func (m *Meili) RemoveFile(fileID uuid.UUID) {
	if !m.healthy.Load() {
		return
	}
	go func() {
		if _, err := m.client.Index(idxFiles).DeleteDocument(fileID.String()); err != nil {
			log.Printf("[ERROR] hapus file %s dari index: %v", fileID, err)
		}
	}()
}

func (m *Meili) SearchFiles(q Query) ([]uuid.UUID, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	sr := &meili.SearchRequest{Limit: limit}
	if q.ProjectID != nil {
		sr.Filter = fmt.Sprintf("project_id = %q", q.ProjectID.String())
	}

	resp, err := m.client.Index(idxFiles).Search(q.Text, sr)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	return hitFileIDs(resp.Hits), nil
}

// hitFileIDs mengekstrak file_id dari hit hasil search. Tiap hit bertipe
// interface{}; dilewatkan JSON supaya bentuk map/struct sama-sama kebaca.
func hitFileIDs(hits []interface{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc struct {
			FileID string `json:"file_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if id, err := uuid.Parse(doc.FileID); err == nil {
			out = append(out, id)
		}
	}
	return out
}
