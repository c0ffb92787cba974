// internals/features/files/pdfmerge/service/assemble.go
package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	mergeDTO "pmhub_backend/internals/features/files/pdfmerge/dto"
)

// Lokasi font CJK yang umum; yang pertama ada dipakai.
var cjkFontCandidates = []string{
	"/usr/share/fonts/truetype/noto/NotoSansSC-Regular.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttf",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttf",
	"/usr/share/fonts/truetype/arphic/ukai.ttf",
	"C:\\Windows\\Fonts\\simhei.ttf",
	"/System/Library/Fonts/STHeiti Light.ttc",
}

type tocEntry struct {
	Level int
	Label string
}

// probeCJKFont mencari font CJK; "" berarti pakai font default platform.
func probeCJKFont(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		log.Printf("[WARN] CJK_FONT_PATH %s tidak ditemukan", explicit)
	}
	for _, p := range cjkFontCandidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Println("[WARN] Font CJK tidak ditemukan; teks non-latin bisa salah render")
	return ""
}

// writeCoverAndTOC menulis cover (+ optional TOC) sebagai PDF tersendiri.
func writeCoverAndTOC(outPath, fontPath, title, subtitle string, cfg mergeDTO.MergeConfig, toc []tocEntry) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	family := "Helvetica"
	if fontPath != "" {
		family = "cjk"
		pdf.AddUTF8Font(family, "", fontPath)
	}

	// ---- cover ----
	pdf.AddPage()
	pdf.SetFont(family, "", 28)
	pdf.SetY(110)
	pdf.CellFormat(0, 14, title, "", 1, "C", false, 0, "")
	if subtitle != "" {
		pdf.SetFont(family, "", 16)
		pdf.CellFormat(0, 10, subtitle, "", 1, "C", false, 0, "")
	}

	// ---- table of contents ----
	if cfg.TOCIncluded() {
		maxLevel := cfg.TOCMaxLevel()
		pdf.AddPage()
		pdf.SetFont(family, "", 18)
		pdf.CellFormat(0, 12, "目录", "", 1, "C", false, 0, "")
		pdf.Ln(4)
		pdf.SetFont(family, "", 11)
		for _, e := range toc {
			if e.Level > maxLevel {
				continue
			}
			indent := float64((e.Level - 1) * 8)
			pdf.SetX(15 + indent)
			pdf.CellFormat(0, 7, e.Label, "", 1, "L", false, 0, "")
		}
	}

	return pdf.OutputFileAndClose(outPath)
}

// mergeWithBookmarks menggabungkan cover/TOC + file PDF dan menambahkan
// satu outline entry per file berlabel original_name. Outline bawaan file
// tidak diimpor.
func mergeWithBookmarks(coverPath string, items []mergeDTO.MergeItem, outPath string) error {
	inFiles := make([]string, 0, len(items)+1)
	inFiles = append(inFiles, coverPath)
	for _, it := range items {
		inFiles = append(inFiles, it.StoredPath)
	}

	if err := api.MergeCreateFile(inFiles, outPath, false, nil); err != nil {
		return fmt.Errorf("merge pdf: %w", err)
	}

	// offset halaman per file untuk bookmark
	page := 1
	coverPages, err := api.PageCountFile(coverPath)
	if err != nil {
		return err
	}
	page += coverPages

	bms := make([]pdfcpu.Bookmark, 0, len(items))
	for _, it := range items {
		n, err := api.PageCountFile(it.StoredPath)
		if err != nil {
			return err
		}
		bms = append(bms, pdfcpu.Bookmark{
			Title:    it.OriginalName,
			PageFrom: page,
		})
		page += n
	}

	if len(bms) > 0 {
		withBm := outPath + ".bm"
		if err := api.AddBookmarksFile(outPath, withBm, bms, true, nil); err != nil {
			// bookmark gagal bukan alasan membatalkan merge
			log.Printf("[WARN] tambah bookmark: %v", err)
			return nil
		}
		return os.Rename(withBm, outPath)
	}
	return nil
}

// stampPageNumbers menambahkan footer "第 i 页 / 共 N 页" di tengah bawah
// tiap halaman.
func stampPageNumbers(inPath, outPath, fontPath string) error {
	fontName := "Helvetica"
	if fontPath != "" {
		if err := api.InstallFonts([]string{fontPath}); err != nil {
			log.Printf("[WARN] install font %s: %v", fontPath, err)
		} else {
			fontName = strings.TrimSuffix(filepath.Base(fontPath), filepath.Ext(fontPath))
		}
	}

	desc := fmt.Sprintf("font:%s, points:10, pos:bc, off:0 10, scale:1 abs, rot:0, fillcol:#000000", fontName)
	wm, err := api.TextWatermark("第 %p 页 / 共 %P 页", desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("build watermark: %w", err)
	}
	return api.AddWatermarksFile(inPath, outPath, nil, wm, nil)
}
