// Package catalogimport loads products from spreadsheet (.xlsx) and JSON
// files into the catalog, and can watch an inbox directory for new files.
package catalogimport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/rentassist/internal/fileid"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/watcher"
	"github.com/hyperjump/rentassist/pkg/utils"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Extensions lists the supported file extensions.
var Extensions = []string{".xlsx", ".json"}

// ErrUnsupported is returned for files of an unsupported type.
var ErrUnsupported = errors.New("unsupported file type")

// Sink stores one product and returns its id.
type Sink interface {
	IndexProduct(ctx context.Context, in *models.ProductInput) (string, error)
}

// RowError is a row that could not be imported.
type RowError struct {
	Row string `json:"row"`
	Err string `json:"error"`
}

// Result summarizes one imported file.
type Result struct {
	File     string     `json:"file"`
	Imported int        `json:"imported"`
	IDs      []string   `json:"ids"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Importer reads product files into a Sink.
type Importer struct {
	sink     Sink
	validate *validator.Validate
	logger   *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// NewImporter creates an importer writing to sink.
func NewImporter(sink Sink, opts ...Option) *Importer {
	im := &Importer{sink: sink, validate: validator.New()}
	for _, opt := range opts {
		opt(im)
	}
	im.logger = utils.OrNop(im.logger)
	return im
}

type row struct {
	key   string
	input *models.ProductInput
	err   error
}

// ImportFile imports every product row of the file at path. Rows without an
// id get one derived from the file path and row, so re-importing a file
// updates its products. Bad rows are reported in Result.Errors and skipped;
// an error is returned only when the file itself cannot be read.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	var rows []row
	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".xlsx":
		rows, err = readXLSX(absPath)
	case ".json":
		rows, err = readJSON(absPath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(absPath))
	}
	if err != nil {
		return nil, err
	}

	res := &Result{File: absPath, IDs: []string{}}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if r.err == nil {
			r.err = im.validate.Struct(r.input)
		}
		if r.err != nil {
			res.Errors = append(res.Errors, RowError{Row: r.key, Err: r.err.Error()})
			continue
		}
		if r.input.ID == "" {
			r.input.ID = fileid.RowID(absPath, r.key)
		}
		id, err := im.sink.IndexProduct(ctx, r.input)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: r.key, Err: err.Error()})
			continue
		}
		res.Imported++
		res.IDs = append(res.IDs, id)
	}
	im.logger.Info("catalog file imported",
		zap.String("file", absPath), zap.Int("imported", res.Imported), zap.Int("errors", len(res.Errors)))
	return res, nil
}

// ImportDirectory imports every supported file directly inside dir.
func (im *Importer) ImportDirectory(ctx context.Context, dir string) ([]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var results []*Result
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		res, err := im.ImportFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// WatchInbox imports the files already in dir, then every supported file
// written there until ctx is done.
func (im *Importer) WatchInbox(ctx context.Context, dir string, opts ...watcher.Option) (*watcher.Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}
	opts = append([]watcher.Option{watcher.WithLogger(im.logger)}, opts...)
	w := watcher.New([]string{dir}, Extensions, func(path string) {
		if _, err := im.ImportFile(ctx, path); err != nil {
			im.logger.Warn("inbox import failed", zap.String("file", path), zap.Error(err))
		}
	}, opts...)
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("watch inbox: %w", err)
	}
	w.SyncExisting()
	return w, nil
}

// Supported reports whether path has a supported extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func readXLSX(path string) ([]row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var out []row
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		fields, err := mapHeader(rows[0])
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for i, cells := range rows[1:] {
			if blank(cells) {
				continue
			}
			in, err := rowToInput(fields, cells)
			out = append(out, row{key: sheet + ":" + strconv.Itoa(i+2), input: in, err: err})
		}
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readJSON accepts an array of products or an object with a "products" array.
func readJSON(path string) ([]row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	data = bytes.TrimSpace(data)
	var items []json.RawMessage
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		items = wrapped.Products
	} else if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	out := make([]row, 0, len(items))
	for i, raw := range items {
		var in models.ProductInput
		err := json.Unmarshal(raw, &in)
		if err != nil {
			err = fmt.Errorf("decode product: %w", err)
		}
		out = append(out, row{key: strconv.Itoa(i), input: &in, err: err})
	}
	return out, nil
}
