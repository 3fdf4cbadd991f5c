package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hairfit/internal/domain"
	"hairfit/internal/workflow"
	"hairfit/pkg/zip"
)

const exportConcurrency = 4

type exportManifest struct {
	ExportedAt time.Time              `json:"exported_at"`
	Records    []domain.HistoryRecord `json:"records"`
	Missing    []string               `json:"missing,omitempty"`
}

type exportJob struct {
	url  string
	name string
}

// runExport downloads every history image and writes them, with the records
// as manifest.json, into a zip archive. Images that cannot be fetched are
// listed under "missing" instead of failing the export.
func runExport(ctx context.Context, wf *workflow.Workflow, photos domain.PhotoFetcher, assetBase string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	outPath := fs.String("o", "history.zip", "archive to write")
	memberID := fs.String("member", "", "only export records for this member")
	if err := fs.Parse(args); err != nil {
		return err
	}

	recs, err := wf.History(ctx)
	if err != nil {
		return err
	}
	if id := strings.TrimSpace(*memberID); id != "" {
		kept := recs[:0]
		for _, r := range recs {
			if r.MemberID != nil && *r.MemberID == id {
				kept = append(kept, r)
			}
		}
		recs = kept
	}

	var jobs []exportJob
	for _, r := range recs {
		if p := r.OriginalPhotoPath; p != "" && !domain.IsDataURI(p) {
			jobs = append(jobs, exportJob{url: assetURL(assetBase, p), name: r.ID + "-original"})
		}
		if p := r.ResultPhotoPath; p != "" && !domain.IsDataURI(p) {
			jobs = append(jobs, exportJob{url: assetURL(assetBase, p), name: r.ID + "-result"})
		}
	}

	assets := make([]zip.Asset, len(jobs))
	var (
		mu      sync.Mutex
		missing []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			bin, err := photos.FetchImage(gctx, job.url)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				mu.Lock()
				missing = append(missing, job.url)
				mu.Unlock()
				return nil
			}
			assets[i] = zip.Asset{Filename: job.name + "." + bin.Extension(), Data: bin.Data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fetched := assets[:0]
	for _, a := range assets {
		if a.Filename != "" {
			fetched = append(fetched, a)
		}
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	now := time.Now().UTC()
	manifest := exportManifest{ExportedAt: now, Records: recs, Missing: missing}
	if err := zip.ArchiveAssets(f, fetched, manifest, now); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(stdout, "exported %d records (%d images, %d missing) to %s\n", len(recs), len(fetched), len(missing), *outPath)
	return nil
}

// assetURL resolves a normalized history path against the asset host.
func assetURL(base, p string) string {
	if domain.IsAbsoluteURL(p) {
		return p
	}
	return strings.TrimRight(base, "/") + workflow.NormalizePath(p)
}
