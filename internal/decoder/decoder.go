// Package decoder loads save documents as JSON bytes, either straight from a
// decoded .json file or by running the rakaly decoder on a binary save.
package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// DefaultTimeout bounds one decoder run when no timeout is configured.
const DefaultTimeout = 2 * time.Minute

// rakalyBinary is the executable name looked up on PATH.
const rakalyBinary = "rakaly"

// Source yields the JSON document for a save file along with where it came
// from.
type Source interface {
	Load(ctx context.Context, path string) ([]byte, types.SnapshotInfo, error)
}

// FileSource reads an already decoded JSON document.
type FileSource struct{}

// Load reads the file at path.
func (FileSource) Load(_ context.Context, path string) ([]byte, types.SnapshotInfo, error) {
	info, err := stat(path)
	if err != nil {
		return nil, types.SnapshotInfo{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.SnapshotInfo{}, fmt.Errorf("read %s: %w", path, err)
	}
	return data, info, nil
}

// RakalySource converts a save with `rakaly json --duplicate-keys preserve`.
// Duplicate keys are kept in the output; the document model resolves them.
type RakalySource struct {
	// Path is the decoder executable. Empty means look up rakaly on PATH.
	Path string
	// Timeout bounds one run; zero means DefaultTimeout.
	Timeout time.Duration
}

// Load runs the decoder on path and returns its standard output.
func (s RakalySource) Load(ctx context.Context, path string) ([]byte, types.SnapshotInfo, error) {
	info, err := stat(path)
	if err != nil {
		return nil, types.SnapshotInfo{}, err
	}
	exe, err := FindRakaly(s.Path)
	if err != nil {
		return nil, types.SnapshotInfo{}, err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, "json", "--duplicate-keys", "preserve", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, types.SnapshotInfo{}, fmt.Errorf("decode %s: %w", path, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return nil, types.SnapshotInfo{}, fmt.Errorf("decode %s: %w: %s", path, err, msg)
	}
	return stdout.Bytes(), info, nil
}

// FindRakaly resolves the decoder executable. A configured path must exist;
// otherwise rakaly is looked up on PATH.
func FindRakaly(configured string) (string, error) {
	if configured != "" {
		fi, err := os.Stat(configured)
		if err != nil || fi.IsDir() {
			return "", fmt.Errorf("%w: %s", types.ErrDecoderNotFound, configured)
		}
		return configured, nil
	}
	exe, err := exec.LookPath(rakalyBinary)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not on PATH", types.ErrDecoderNotFound, rakalyBinary)
	}
	return exe, nil
}

// ForFile picks the source for path: .json files are read directly and
// everything else goes through rakaly.
func ForFile(path string, rakaly RakalySource) Source {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FileSource{}
	}
	return rakaly
}

// ErrNotAFile is returned when the save path names a directory.
var ErrNotAFile = errors.New("save path is not a regular file")

func stat(path string) (types.SnapshotInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return types.SnapshotInfo{}, fmt.Errorf("stat save: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return types.SnapshotInfo{}, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	return types.SnapshotInfo{
		Filename: filepath.Base(path),
		SavedAt:  fi.ModTime().UTC(),
	}, nil
}
