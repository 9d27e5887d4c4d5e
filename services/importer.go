package services

import (
	"context"
	"encoding/json"
	"fmt"
	"georeport/model"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// Importer pulls report batches dropped into a directory as JSON arrays.
type Importer struct {
	Dir      string
	Store    ReportStore
	Notifier Notifier
}

type ImportResult struct {
	Files  int `json:"files"`
	Added  int `json:"added"`
	Failed int `json:"failed"`
}

// ImportDir imports every *.json file in name order. A file that imports
// cleanly is renamed to *.done; a file that fails to parse is renamed to
// *.failed so it is not retried on every run.
func (im *Importer) ImportDir(ctx context.Context) (ImportResult, error) {
	var res ImportResult
	if im.Dir == "" {
		return res, nil
	}
	paths, err := filepath.Glob(filepath.Join(im.Dir, "*.json"))
	if err != nil {
		return res, fmt.Errorf("list import dir: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		reports, err := readBatch(path)
		if err != nil {
			log.Printf("import %s failed: %v", filepath.Base(path), err)
			res.Failed++
			if rerr := os.Rename(path, path+".failed"); rerr != nil {
				log.Printf("could not set aside %s: %v", path, rerr)
			}
			continue
		}
		// store errors leave the file in place for the next run
		added, err := im.Store.Import(ctx, reports)
		if err != nil {
			return res, fmt.Errorf("import %s: %w", filepath.Base(path), err)
		}
		res.Files++
		res.Added += added
		if err := os.Rename(path, path+".done"); err != nil {
			return res, fmt.Errorf("mark %s done: %w", filepath.Base(path), err)
		}
	}

	if res.Added > 0 && im.Notifier != nil {
		n := Notice{Kind: NoticeInfo, Title: "Import", Message: fmt.Sprintf("%d reportes nuevos importados", res.Added)}
		if err := im.Notifier.Notify(ctx, n); err != nil {
			log.Printf("import notice failed: %v", err)
		}
	}
	return res, nil
}

func readBatch(path string) ([]model.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reports []model.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return reports, nil
}
