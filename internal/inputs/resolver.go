package inputs

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/errors"
	"github.com/zengent/codelens/pkg/shared/files"
)

// Directories that never contain first-party source worth scanning.
var skippedDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
}

// Resolver turns a Source reference into the flat list of decodable source
// files. Per-file read and decode problems are absorbed as warnings; only a
// completely unreadable source is an error.
type Resolver struct {
	cfg    *config.Config
	logger hclog.Logger
}

// NewResolver creates a Resolver with the provided configuration.
func NewResolver(cfg *config.Config, logger hclog.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: logger}
}

// Resolve reads the project's source files. The returned warnings list one
// entry per skipped file.
func (r *Resolver) Resolve(ctx context.Context, src Source) ([]SourceFile, []string, error) {
	switch src.Kind {
	case KindDir:
		return r.resolveDir(ctx, src.Path)
	case KindArchive:
		return r.resolveArchive(ctx, src.Path)
	case KindGit:
		targetFolder, err := r.cloneRepository(ctx, src)
		if err != nil {
			return nil, nil, err
		}
		return r.resolveDir(ctx, targetFolder)
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// resolveDir walks a directory tree collecting decodable files.
func (r *Resolver) resolveDir(ctx context.Context, root string) ([]SourceFile, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access source directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source path %q is not a directory", root)
	}

	var (
		sourceFiles []SourceFile
		warnings    []string
	)
	maxSize := config.SetThen(r.cfg.Scan.MaxFileSize, config.DefaultMaxFileSize)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			warnings = append(warnings, errors.NewInputReadError(path, walkErr).Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// cancellation check between files
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		fileInfo, err := d.Info()
		if err != nil {
			warnings = append(warnings, errors.NewInputReadError(rel, err).Error())
			return nil
		}
		if fileInfo.Size() > maxSize {
			warnings = append(warnings, fmt.Sprintf("skipped %q: file exceeds size limit (%d bytes)", rel, fileInfo.Size()))
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, errors.NewInputReadError(rel, err).Error())
			return nil
		}
		if !isText(raw) {
			warnings = append(warnings, fmt.Sprintf("skipped %q: not a text file", rel))
			return nil
		}

		sourceFiles = append(sourceFiles, SourceFile{RelPath: rel, Content: string(raw)})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(sourceFiles, func(i, j int) bool { return sourceFiles[i].RelPath < sourceFiles[j].RelPath })
	r.logger.Debug("source directory resolved", "root", root, "files", len(sourceFiles), "skipped", len(warnings))
	return sourceFiles, warnings, nil
}

// resolveArchive reads decodable files straight out of a zip archive without
// extracting it to disk.
func (r *Resolver) resolveArchive(ctx context.Context, path string) ([]SourceFile, []string, error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open archive %q: %w", path, err)
	}
	defer zipReader.Close()

	var (
		sourceFiles []SourceFile
		warnings    []string
	)
	maxSize := config.SetThen(r.cfg.Scan.MaxFileSize, config.DefaultMaxFileSize)

	// entries are read in memory, but their names must still resolve inside
	// the unpack root: ".." segments escape, dotted file names do not
	unpackRoot := config.GetTempHome(r.cfg)
	if unpackRoot == "" {
		unpackRoot = os.TempDir()
	}

	for _, entry := range zipReader.File {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.ToSlash(entry.Name)
		if _, err := files.EnsureWithinRoot(unpackRoot, filepath.Join(unpackRoot, name)); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %q: traversal entry name", name))
			continue
		}
		if inSkippedDir(name) {
			continue
		}
		if entry.UncompressedSize64 > uint64(maxSize) {
			warnings = append(warnings, fmt.Sprintf("skipped %q: file exceeds size limit (%d bytes)", name, entry.UncompressedSize64))
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			warnings = append(warnings, errors.NewInputReadError(name, err).Error())
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
		rc.Close()
		if err != nil {
			warnings = append(warnings, errors.NewInputReadError(name, err).Error())
			continue
		}
		if int64(len(raw)) > maxSize {
			warnings = append(warnings, fmt.Sprintf("skipped %q: file exceeds size limit", name))
			continue
		}
		if !isText(raw) {
			warnings = append(warnings, fmt.Sprintf("skipped %q: not a text file", name))
			continue
		}

		sourceFiles = append(sourceFiles, SourceFile{RelPath: name, Content: string(raw)})
	}

	sort.Slice(sourceFiles, func(i, j int) bool { return sourceFiles[i].RelPath < sourceFiles[j].RelPath })
	r.logger.Debug("archive resolved", "path", path, "files", len(sourceFiles), "skipped", len(warnings))
	return sourceFiles, warnings, nil
}

func inSkippedDir(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if skippedDirs[part] {
			return true
		}
	}
	return false
}

// isText reports whether data looks like decodable text. A NUL byte in the
// sniff window marks the file as binary.
func isText(data []byte) bool {
	window := data
	if len(window) > 8000 {
		window = window[:8000]
	}
	return !bytes.ContainsRune(window, 0x00)
}
