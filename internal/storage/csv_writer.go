package storage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

var artifactPattern = regexp.MustCompile(`^\d{8}_\d{4}\.csv$`)

// Artifact describes one file in the output folder.
type Artifact struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// CSVWriter writes artifacts as files in a folder.
type CSVWriter struct {
	folder string
	header string
}

// NewCSVWriter creates the folder if needed.
func NewCSVWriter(folder, header string) (*CSVWriter, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create output folder %s: %w", folder, err)
	}
	return &CSVWriter{folder: folder, header: header}, nil
}

// Folder returns the output folder.
func (w *CSVWriter) Folder() string { return w.folder }

// Dump implements Sink.
//
// The content goes to a temp file in the same folder which is then renamed
// over name, so readers never observe a partial artifact. Two runs in the same
// minute resolve to the same name; the later one wins.
func (w *CSVWriter) Dump(ctx context.Context, name string, lines []string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	// the folder may have been removed since construction
	if err := os.MkdirAll(w.folder, 0o755); err != nil {
		return fmt.Errorf("create output folder %s: %w", w.folder, err)
	}

	tmp, err := os.CreateTemp(w.folder, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if _, err = bw.WriteString(w.header + lineEnding); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range lines {
		if _, err = bw.WriteString(l + lineEnding); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(w.folder, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// List returns up to limit artifacts, newest first. limit <= 0 means all.
// Names embed the run time, so lexical order is chronological order.
func (w *CSVWriter) List(limit int) ([]Artifact, error) {
	entries, err := os.ReadDir(w.folder)
	if err != nil {
		return nil, fmt.Errorf("read output folder: %w", err)
	}

	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !artifactPattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		out = append(out, Artifact{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Writable reports whether a file can be created in the output folder.
func (w *CSVWriter) Writable() error {
	if err := os.MkdirAll(w.folder, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(w.folder, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
