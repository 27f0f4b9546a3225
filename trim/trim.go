// Package trim copies a row window of every dataset in an HDF5 file into
// a new HDF5 file. The group hierarchy, attributes, chunk shapes, and
// filter pipelines of the input are preserved; only axis 0 of each dataset
// is cut down to the selected window.
package trim

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/robert-malhotra/h5trim/hdf5"
)

// Option configures a trim run.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

// WithLogger sets the logger for progress reporting. The default discards
// all output.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Trim copies rows [w.Start, w.End) of every dataset in inputPath into a
// new file at outputPath. The output is written to a temporary file in the
// destination directory and renamed into place on success, so a failed run
// never leaves a partial output and an existing output survives any error.
//
// Groups are mirrored with their attributes and never trimmed. Scalar
// datasets are copied whole. A window starting at or past a dataset's
// length produces an empty dataset that still exists in the output.
func Trim(inputPath, outputPath string, w Window, opts ...Option) error {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	if w.Len() == 0 {
		return fmt.Errorf("%w: empty window %s", ErrInvalidArgument, w)
	}

	in, err := hdf5.Open(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputNotFound, inputPath, err)
	}
	defer in.Close()

	tmpPath, err := reserveTempPath(outputPath)
	if err != nil {
		return fmt.Errorf("%w: creating temporary output in %s: %v", ErrWriteFailure, filepath.Dir(outputPath), err)
	}

	out, err := hdf5.Create(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: creating %s: %v", ErrWriteFailure, tmpPath, err)
	}

	copyErr := copyAll(in, out, w, cfg.logger)

	// Close flushes the superblock and syncs before the rename
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWriteFailure, copyErr)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming output to %s: %v", ErrWriteFailure, outputPath, err)
	}

	return nil
}

// reserveTempPath creates an empty temporary file next to outputPath and
// returns its name. The caller overwrites and later renames or removes it.
func reserveTempPath(outputPath string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(outputPath), filepath.Base(outputPath)+".tmp*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// copyAll walks the input hierarchy once, mirroring groups and trimming
// datasets into out.
func copyAll(in, out *hdf5.File, w Window, logger *zap.Logger) error {
	outGroups := map[string]*hdf5.Group{"/": out.Root()}
	var groupCount, datasetCount int

	err := hdf5.Walk(in.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}

		switch o := obj.(type) {
		case *hdf5.Group:
			dst := outGroups[p]
			if dst == nil {
				parent := outGroups[path.Dir(p)]
				if parent == nil {
					return fmt.Errorf("no output group for parent of %s", p)
				}
				dst, err = parent.CreateGroup(path.Base(p))
				if err != nil {
					return fmt.Errorf("creating group %s: %w", p, err)
				}
				outGroups[p] = dst
				groupCount++
				logger.Info("mirrored group", zap.String("path", p))
			}
			for _, name := range o.Attrs() {
				if err := dst.SetAttrFrom(o.Attr(name)); err != nil {
					return fmt.Errorf("copying attribute %q on %s: %w", name, p, err)
				}
			}

		case *hdf5.Dataset:
			parent := outGroups[path.Dir(p)]
			if parent == nil {
				return fmt.Errorf("no output group for parent of %s", p)
			}
			if err := copyDataset(parent, path.Base(p), o, w, logger); err != nil {
				return fmt.Errorf("dataset %s: %w", p, err)
			}
			datasetCount++
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("trim complete",
		zap.String("input", in.Path()),
		zap.Int("groups", groupCount),
		zap.Int("datasets", datasetCount),
		zap.Uint64("window_start", w.Start),
		zap.Uint64("window_end", w.End),
	)
	return nil
}

// copyDataset writes the selected rows of src as a same-named dataset under
// parent, carrying over datatype, chunk shape, filters, and attributes.
func copyDataset(parent *hdf5.Group, name string, src *hdf5.Dataset, w Window, logger *zap.Logger) error {
	var opts []hdf5.DatasetOption
	for _, attrName := range src.Attrs() {
		opts = append(opts, hdf5.WithAttributeFrom(src.Attr(attrName)))
	}

	if src.IsScalar() {
		raw, err := src.ReadRaw()
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		if _, err := parent.CreateDatasetLike(name, src, nil, raw, opts...); err != nil {
			return fmt.Errorf("writing: %w", err)
		}
		logger.Info("copied scalar dataset", zap.String("name", name))
		return nil
	}

	dims := src.Shape()
	eff := w.Clamp(dims[0])
	k := eff.Len()

	outDims := make([]uint64, len(dims))
	copy(outDims, dims)
	outDims[0] = k

	var raw []byte
	if k > 0 {
		start := make([]uint64, len(dims))
		start[0] = eff.Start
		count := make([]uint64, len(dims))
		copy(count, dims)
		count[0] = k

		var err error
		raw, err = src.ReadRawSlice(start, count)
		if err != nil {
			return fmt.Errorf("reading rows %s: %w", eff, err)
		}
	}

	if chunk := src.ChunkDims(); len(chunk) > 0 && k > 0 {
		outChunk := make([]uint64, len(chunk))
		copy(outChunk, chunk)
		if outChunk[0] > k {
			outChunk[0] = k
		}
		if outChunk[0] == 0 {
			outChunk[0] = 1
		}
		opts = append(opts, hdf5.WithChunks(outChunk...))
	}

	if _, err := parent.CreateDatasetLike(name, src, outDims, raw, opts...); err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	logger.Info("trimmed dataset",
		zap.String("name", name),
		zap.Uint64("rows_in", dims[0]),
		zap.Uint64("rows_out", k),
	)
	return nil
}
