package decoder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// fakeRakaly writes an executable shell script standing in for the decoder.
func fakeRakaly(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script decoder requires a POSIX shell")
	}
	if testing.Short() {
		t.Skip("runs a decoder subprocess")
	}
	path := filepath.Join(t.TempDir(), "rakaly")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func writeSave(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource(t *testing.T) {
	path := writeSave(t, "autosave.json", `{"game_date":"1836.1.1"}`)
	mtime := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	data, info, err := FileSource{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"game_date":"1836.1.1"}`, string(data))
	assert.Equal(t, "autosave.json", info.Filename)
	assert.True(t, mtime.Equal(info.SavedAt))
}

func TestFileSource_Errors(t *testing.T) {
	_, _, err := FileSource{}.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = FileSource{}.Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestRakalySource(t *testing.T) {
	// The fake echoes its arguments so the invocation can be checked.
	exe := fakeRakaly(t, `printf '{"args":"%s"}' "$*"`)
	save := writeSave(t, "autosave.v3", "SAV0102")

	data, info, err := RakalySource{Path: exe}.Load(context.Background(), save)
	require.NoError(t, err)
	assert.JSONEq(t, `{"args":"json --duplicate-keys preserve `+save+`"}`, string(data))
	assert.Equal(t, "autosave.v3", info.Filename)
}

func TestRakalySource_Failure(t *testing.T) {
	exe := fakeRakaly(t, `echo "unknown save format" >&2; exit 3`)
	save := writeSave(t, "autosave.v3", "garbage")

	_, _, err := RakalySource{Path: exe}.Load(context.Background(), save)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown save format")
}

func TestRakalySource_Timeout(t *testing.T) {
	exe := fakeRakaly(t, `exec sleep 5`)
	save := writeSave(t, "autosave.v3", "SAV")

	start := time.Now()
	_, _, err := RakalySource{Path: exe, Timeout: 100 * time.Millisecond}.Load(context.Background(), save)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRakalySource_MissingDecoder(t *testing.T) {
	save := writeSave(t, "autosave.v3", "SAV")
	_, _, err := RakalySource{Path: filepath.Join(t.TempDir(), "nope")}.Load(context.Background(), save)
	assert.ErrorIs(t, err, types.ErrDecoderNotFound)
}

func TestFindRakaly(t *testing.T) {
	exe := fakeRakaly(t, "exit 0")

	got, err := FindRakaly(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = FindRakaly(t.TempDir())
	assert.ErrorIs(t, err, types.ErrDecoderNotFound)

	t.Setenv("PATH", filepath.Dir(exe))
	got, err = FindRakaly("")
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	t.Setenv("PATH", t.TempDir())
	_, err = FindRakaly("")
	assert.ErrorIs(t, err, types.ErrDecoderNotFound)
}

func TestForFile(t *testing.T) {
	rakaly := RakalySource{Path: "/opt/rakaly"}
	tests := []struct {
		path string
		want Source
	}{
		{"save.json", FileSource{}},
		{"SAVE.JSON", FileSource{}},
		{"autosave.v3", rakaly},
		{"noext", rakaly},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ForFile(tt.path, rakaly))
		})
	}
}
