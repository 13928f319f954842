package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/imageutil"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// Output formats for ClassifyImages.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// ClassifyImages classifies every image in paths, appending each result to
// the prediction log. Directories are walked recursively for image files.
// A failing image is reported and the rest are still processed.
func ClassifyImages(ctx context.Context, c *Components, paths []string, format string, w io.Writer) error {
	files, err := expandImagePaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Newf("no images found in %s", strings.Join(paths, ", ")).
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}

	opts := c.Settings.ImageOptions()
	rows := make([]ClassificationRow, 0, len(files))
	records := make([]predictionlog.Record, 0, len(files))
	failed := 0

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := classifyFile(ctx, c, path, opts)
		if err != nil {
			failed++
			c.Logger.Warn("image classification failed", logger.String("file", path), logger.Error(err))
			rows = append(rows, ClassificationRow{File: path, Err: err})
			continue
		}
		records = append(records, rec)
		rows = append(rows, ClassificationRow{File: path, Class: rec.PredictedClass, Confidence: rec.Confidence})
	}

	switch format {
	case FormatCSV:
		err = predictionlog.WriteCSV(w, records)
	default:
		_, err = io.WriteString(w, renderClassifications(rows))
	}
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if failed > 0 {
		return errors.Newf("%d of %d images could not be classified", failed, len(files)).
			Component("analysis").
			Category(errors.CategoryDetection).
			Context("failed", failed).
			Build()
	}
	return nil
}

func classifyFile(ctx context.Context, c *Components, path string, opts imageutil.Options) (predictionlog.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return predictionlog.Record{}, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	img, err := imageutil.Normalize(bytes.NewReader(data), opts)
	if c.Metrics != nil {
		c.Metrics.Detection.RecordImage(len(data), err == nil)
	}
	if err != nil {
		return predictionlog.Record{}, err
	}

	result, err := detection.Classify(ctx, c.Detector, img.Data)
	if err != nil {
		return predictionlog.Record{}, err
	}

	return c.Store.Append(ctx, predictionlog.EntryFromResult(result, filepath.Base(path)))
}

// expandImagePaths returns the files named by paths with directories
// replaced by the image files below them, in lexical order per directory.
func expandImagePaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.New(err).
				Component("analysis").
				Category(errors.CategoryFileIO).
				FileContext(p, 0).
				Build()
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isImageFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.New(err).
				Component("analysis").
				Category(errors.CategoryFileIO).
				FileContext(p, 0).
				Build()
		}
	}
	return files, nil
}

func isImageFile(path string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path)))
}
