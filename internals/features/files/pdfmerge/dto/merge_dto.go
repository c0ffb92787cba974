// internals/features/files/pdfmerge/dto/merge_dto.go
package dto

import "github.com/google/uuid"

type CoverPageConfig struct {
	// default: nama project
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
}

type TOCConfig struct {
	// default true
	Include *bool `json:"include"`
	// 1=project 2=subproject 3=stage 4=task(+file); default 3
	MaxLevel int `json:"max_level"`
}

type MergeConfig struct {
	CoverPage CoverPageConfig `json:"cover_page"`
	TOC       TOCConfig       `json:"toc"`
}

func (c MergeConfig) TOCIncluded() bool {
	if c.TOC.Include == nil {
		return true
	}
	return *c.TOC.Include
}

func (c MergeConfig) TOCMaxLevel() int {
	if c.TOC.MaxLevel < 1 || c.TOC.MaxLevel > 4 {
		return 3
	}
	return c.TOC.MaxLevel
}

type GeneratePreviewRequest struct {
	Config      MergeConfig `json:"config"`
	SelectedIDs []uuid.UUID `json:"selected_ids"`
}

type BuildFinalRequest struct {
	Config        MergeConfig `json:"config"`
	SelectedIDs   []uuid.UUID `json:"selected_ids"`
	PagesToDelete []int       `json:"pages_to_delete"`
}

type PreviewPage struct {
	PageIndex int    `json:"page_index"`
	ImageURL  string `json:"image_url"`
}

type PreviewResponse struct {
	PreviewSessionID uuid.UUID     `json:"preview_session_id"`
	Pages            []PreviewPage `json:"pages"`
}

type MergeItem struct {
	FileID       uuid.UUID `json:"file_id"`
	StoredPath   string    `json:"stored_path"`
	OriginalName string    `json:"original_name"`
}
