// internals/features/files/pdfmerge/service/merge_service.go
package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	fileModel "pmhub_backend/internals/features/files/files/model"
	mergeDTO "pmhub_backend/internals/features/files/pdfmerge/dto"
	planService "pmhub_backend/internals/features/projects/plans/service"
)

const previewDPI = 100

// MergeService merakit laporan PDF satu project: cover + TOC + seluruh file
// PDF dalam urutan pohon yang deterministik. Hasil akhir tidak pernah
// disimpan di server; hanya byte respons.
type MergeService struct {
	DB       *gorm.DB
	Plans    *planService.PlanStore
	Previews *PreviewStore

	mu       sync.RWMutex
	progress map[uuid.UUID]int // projectID -> persen merge berjalan
}

func NewMergeService(db *gorm.DB, previews *PreviewStore) *MergeService {
	return &MergeService{
		DB:       db,
		Plans:    planService.NewPlanStore(db),
		Previews: previews,
		progress: make(map[uuid.UUID]int),
	}
}

/* ===================== PROGRESS ===================== */

func (s *MergeService) setProgress(projectID uuid.UUID, pct int) {
	s.mu.Lock()
	s.progress[projectID] = pct
	s.mu.Unlock()
}

// Progress mengembalikan persen merge terakhir; 0 jika belum pernah jalan.
func (s *MergeService) Progress(projectID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress[projectID]
}

/* ===================== ORDERED PDF LIST ===================== */

// leadingInt membaca prefix angka pada nama file ("3_结题报告.pdf" -> 3).
func leadingInt(name string) (int, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// sortPDFGroup mengurutkan file dalam satu task: prefix angka naik, yang
// tanpa prefix di belakang, seri diputus nama.
func sortPDFGroup(rows []fileModel.FileModel) {
	sort.SliceStable(rows, func(i, j int) bool {
		ni, oki := leadingInt(rows[i].FileOriginalName)
		nj, okj := leadingInt(rows[j].FileOriginalName)
		switch {
		case oki && okj:
			if ni != nj {
				return ni < nj
			}
			return rows[i].FileOriginalName < rows[j].FileOriginalName
		case oki:
			return true
		case okj:
			return false
		default:
			return rows[i].FileOriginalName < rows[j].FileOriginalName
		}
	})
}

// OrderedPDFList menelusuri pohon project (subproject -> stage -> task,
// masing-masing name ASC / id ASC) dan mengumpulkan file .pdf per task.
// selected kosong berarti semua file ikut. Entri TOC dibangun dalam
// traversal yang sama agar urutannya identik dengan isi dokumen.
func (s *MergeService) OrderedPDFList(projectID uuid.UUID, selected []uuid.UUID) ([]mergeDTO.MergeItem, []tocEntry, error) {
	project, err := s.Plans.GetProject(s.DB, projectID)
	if err != nil {
		return nil, nil, err
	}

	pick := make(map[uuid.UUID]bool, len(selected))
	for _, id := range selected {
		pick[id] = true
	}

	items := []mergeDTO.MergeItem{}
	toc := []tocEntry{{Level: 1, Label: project.ProjectName}}

	subs, err := s.Plans.OrderedSubprojects(s.DB, projectID)
	if err != nil {
		return nil, nil, err
	}
	for i := range subs {
		toc = append(toc, tocEntry{Level: 2, Label: subs[i].SubprojectName})

		stages, err := s.Plans.OrderedStages(s.DB, subs[i].SubprojectID)
		if err != nil {
			return nil, nil, err
		}
		for j := range stages {
			toc = append(toc, tocEntry{Level: 3, Label: stages[j].StageName})

			tasks, err := s.Plans.OrderedTasks(s.DB, stages[j].StageID)
			if err != nil {
				return nil, nil, err
			}
			for k := range tasks {
				toc = append(toc, tocEntry{Level: 4, Label: tasks[k].TaskName})

				var rows []fileModel.FileModel
				if err := s.DB.
					Where("file_task_id = ? AND file_deleted_at IS NULL", tasks[k].TaskID).
					Find(&rows).Error; err != nil {
					return nil, nil, err
				}

				group := rows[:0]
				for _, f := range rows {
					// kandidat merge ditentukan dari nama tersimpan di disk
					if !strings.EqualFold(filepath.Ext(f.FileStoredName), ".pdf") {
						continue
					}
					if len(pick) > 0 && !pick[f.FileID] {
						continue
					}
					group = append(group, f)
				}
				sortPDFGroup(group)

				for _, f := range group {
					items = append(items, mergeDTO.MergeItem{
						FileID:       f.FileID,
						StoredPath:   filepath.Join(configs.UploadRoot, f.FileStoredName),
						OriginalName: f.FileOriginalName,
					})
				}
			}
		}
	}
	return items, toc, nil
}

/* ===================== BASE DOCUMENT ===================== */

// buildBase merakit cover + TOC + file terpilih menjadi satu PDF di scratch
// dir. Dipakai baik untuk preview maupun dokumen final sehingga keduanya
// identik untuk input yang sama.
func (s *MergeService) buildBase(projectID uuid.UUID, cfg mergeDTO.MergeConfig, selected []uuid.UUID, scratch string) (string, error) {
	s.setProgress(projectID, 10)

	project, err := s.Plans.GetProject(s.DB, projectID)
	if err != nil {
		return "", err
	}

	items, toc, err := s.OrderedPDFList(projectID, selected)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "该项目下没有可合并的 PDF 文件")
	}
	for _, it := range items {
		if _, err := os.Stat(it.StoredPath); err != nil {
			return "", fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("文件 %s 缺失，无法合并", it.OriginalName))
		}
	}

	title := cfg.CoverPage.Name
	if title == "" {
		title = project.ProjectName
	}
	fontPath := probeCJKFont(configs.CJKFontPath)

	coverPath := filepath.Join(scratch, "cover_toc.pdf")
	if err := writeCoverAndTOC(coverPath, fontPath, title, cfg.CoverPage.Subtitle, cfg, toc); err != nil {
		return "", fmt.Errorf("tulis cover/TOC: %w", err)
	}
	s.setProgress(projectID, 30)

	basePath := filepath.Join(scratch, "base.pdf")
	if err := mergeWithBookmarks(coverPath, items, basePath); err != nil {
		return "", err
	}
	s.setProgress(projectID, 60)
	return basePath, nil
}

/* ===================== PREVIEW ===================== */

// GeneratePagedPreview merakit dokumen, merender tiap halaman jadi PNG di
// staging dir sesi preview, lalu membuang PDF perantara.
func (s *MergeService) GeneratePagedPreview(projectID uuid.UUID, req mergeDTO.GeneratePreviewRequest) (*mergeDTO.PreviewResponse, error) {
	scratch, err := os.MkdirTemp("", "pmhub_merge_*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	basePath, err := s.buildBase(projectID, req.Config, req.SelectedIDs, scratch)
	if err != nil {
		s.setProgress(projectID, 0)
		return nil, err
	}

	cfgJSON, err := sonic.Marshal(req.Config)
	if err != nil {
		return nil, err
	}
	sess, err := s.Previews.Create(projectID, cfgJSON)
	if err != nil {
		return nil, err
	}

	doc, err := fitz.New(basePath)
	if err != nil {
		s.Previews.Drop(sess.PreviewSessionID)
		return nil, fmt.Errorf("buka pdf hasil merge: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]mergeDTO.PreviewPage, 0, total)
	for i := 0; i < total; i++ {
		img, err := doc.ImageDPI(i, previewDPI)
		if err != nil {
			s.Previews.Drop(sess.PreviewSessionID)
			return nil, fmt.Errorf("render halaman %d: %w", i, err)
		}
		dst, err := s.Previews.Path(sess.PreviewSessionID, i)
		if err != nil {
			s.Previews.Drop(sess.PreviewSessionID)
			return nil, err
		}
		if err := imaging.Save(img, dst); err != nil {
			s.Previews.Drop(sess.PreviewSessionID)
			return nil, fmt.Errorf("simpan halaman %d: %w", i, err)
		}
		pages = append(pages, mergeDTO.PreviewPage{
			PageIndex: i,
			ImageURL: fmt.Sprintf("/static/temp_preview_images/%s/page_%d.png",
				sess.PreviewSessionID, i),
		})
	}

	if err := s.Previews.SetPageCount(sess.PreviewSessionID, total); err != nil {
		log.Printf("[WARN] simpan page_count preview %s: %v", sess.PreviewSessionID, err)
	}
	s.setProgress(projectID, 100)

	return &mergeDTO.PreviewResponse{
		PreviewSessionID: sess.PreviewSessionID,
		Pages:            pages,
	}, nil
}

/* ===================== FINAL DOCUMENT ===================== */

// BuildFinal merakit ulang dokumen dari sumber (bukan dari PNG preview),
// membuang halaman terpilih, lalu menomori halaman yang tersisa secara
// kontinu. Seluruh file perantara dibersihkan apa pun hasilnya.
func (s *MergeService) BuildFinal(projectID uuid.UUID, req mergeDTO.BuildFinalRequest) ([]byte, error) {
	scratch, err := os.MkdirTemp("", "pmhub_merge_*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	basePath, err := s.buildBase(projectID, req.Config, req.SelectedIDs, scratch)
	if err != nil {
		s.setProgress(projectID, 0)
		return nil, err
	}

	total, err := api.PageCountFile(basePath)
	if err != nil {
		return nil, err
	}

	trimmed := basePath
	if len(req.PagesToDelete) > 0 {
		if len(req.PagesToDelete) >= total {
			return nil, fiber.NewError(fiber.StatusBadRequest, "不能删除全部页面")
		}
		// index halaman dari klien 0-based; pdfcpu 1-based
		sel := make([]string, 0, len(req.PagesToDelete))
		for _, p := range req.PagesToDelete {
			if p < 0 || p >= total {
				return nil, fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("删除页码 %d 超出范围", p))
			}
			sel = append(sel, strconv.Itoa(p+1))
		}
		trimmed = filepath.Join(scratch, "trimmed.pdf")
		if err := api.RemovePagesFile(basePath, trimmed, sel, nil); err != nil {
			return nil, fmt.Errorf("hapus halaman: %w", err)
		}
	}
	s.setProgress(projectID, 80)

	final := filepath.Join(scratch, "final.pdf")
	if err := stampPageNumbers(trimmed, final, probeCJKFont(configs.CJKFontPath)); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(final)
	if err != nil {
		return nil, err
	}

	// dokumen final sudah terbentuk; sesi preview project ini tidak
	// diperlukan lagi
	if err := s.Previews.DropByProject(projectID); err != nil {
		log.Printf("[WARN] bersihkan preview project %s: %v", projectID, err)
	}
	s.setProgress(projectID, 100)
	return out, nil
}
