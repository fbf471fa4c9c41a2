// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUniqueName(t *testing.T) {
	for _, test := range []struct {
		path, id, want string
	}{
		{"/path/to/file.json", "unique123", "unique123-file.json"},
		{"/very/long/path/to/myfile.txt", "abc-def-123", "abc-def-123-myfile.txt"},
		{"test.json", "id1", "id1-test.json"},
		{"test.json", "id2", "id2-test.json"},
	} {
		assert.Equal(t, test.want, UniqueName(test.path, test.id))
	}
}

func TestUniqueNameLong(t *testing.T) {
	t.Run("long filename keeps extension", func(t *testing.T) {
		name := UniqueName(strings.Repeat("a", 1000)+".json", "unique123")
		assert.Len(t, name, MaxNameLen)
		assert.True(t, strings.HasPrefix(name, "unique123-"))
		assert.True(t, strings.HasSuffix(name, ".json"))
	})
	t.Run("long filename and id", func(t *testing.T) {
		id := strings.Repeat("x", 500)
		name := UniqueName(strings.Repeat("b", 1000)+".txt", id)
		assert.LessOrEqual(t, len(name), MaxNameLen)
		assert.True(t, strings.HasPrefix(name, id+"-"))
		assert.True(t, strings.HasSuffix(name, ".txt"))
	})
	t.Run("no extension", func(t *testing.T) {
		name := UniqueName(strings.Repeat("c", 1000), "unique456")
		assert.LessOrEqual(t, len(name), MaxNameLen)
		assert.True(t, strings.HasPrefix(name, "unique456-"))
	})
	t.Run("long extension", func(t *testing.T) {
		id := strings.Repeat("a", 1000)
		name := UniqueName("file.verylongextension1234567890", id)
		assert.Len(t, name, MaxNameLen)
		assert.True(t, strings.HasPrefix(name, id+"-"))
	})
	t.Run("exactly the limit", func(t *testing.T) {
		id := strings.Repeat("a", 100)
		base := strings.Repeat("b", MaxNameLen-len(id)-1)
		assert.Equal(t, id+"-"+base, UniqueName(base, id))
	})
	t.Run("id longer than the limit", func(t *testing.T) {
		id := strings.Repeat("x", 2000)
		assert.Equal(t, id[:MaxNameLen], UniqueName("test.json", id))
	})
	t.Run("little room for the base name", func(t *testing.T) {
		id := strings.Repeat("y", 1020)
		name := UniqueName("verylongfilename.json", id)
		assert.LessOrEqual(t, len(name), MaxNameLen)
		assert.True(t, strings.HasPrefix(name, id))
	})
	t.Run("multibyte base name", func(t *testing.T) {
		name := UniqueName(strings.Repeat("é", 600), "id")
		assert.LessOrEqual(t, len(name), MaxNameLen)
		assert.True(t, strings.HasPrefix(name, "id-"))
		assert.NotContains(t, name, "�")
		assert.True(t, strings.HasSuffix(name, "é"))
	})
}

type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    string
}

func (b *memBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return &memWriter{b: b, ctx: ctx, name: name}
}

func (b *memBucket) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for name := range b.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type memWriter struct {
	b    *memBucket
	ctx  context.Context
	name string
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	if w.b.fail != "" && strings.Contains(w.name, w.b.fail) {
		return 0, errors.New("write refused")
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	if w.b.objects == nil {
		w.b.objects = make(map[string][]byte)
	}
	w.b.objects[w.name] = w.buf.Bytes()
	return nil
}

func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(data), 0o644))
	}
}

func TestUpload(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/out/a.json": `[{"name":"A","tests":[],"results":[]}]`,
		"/out/b.json": `[]`,
	})
	b := &memBucket{}
	u := &Uploader{Bucket: b, Fs: fsys, Prefix: "perf/", ID: "run1", Parallel: 1}

	objs, err := u.Upload(context.Background(), []string{"/out/a.json", "/out/b.json"})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, Object{Path: "/out/a.json", Name: "perf/run1-a.json", Size: 38}, objs[0])
	assert.Equal(t, Object{Path: "/out/b.json", Name: "perf/run1-b.json", Size: 2}, objs[1])
	assert.Equal(t, []string{"perf/run1-a.json", "perf/run1-b.json"}, b.names())
	assert.Equal(t, "[]", string(b.objects["perf/run1-b.json"]))
}

func TestUploadAssignsID(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/m.json": "[]"})
	u := &Uploader{Bucket: &memBucket{}, Fs: fsys}

	objs, err := u.Upload(context.Background(), []string{"/m.json"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Equal(t, u.ID+"-m.json", objs[0].Name)
}

func TestUploadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		u := &Uploader{Bucket: &memBucket{}, Fs: afero.NewMemMapFs(), ID: "x"}
		_, err := u.Upload(context.Background(), []string{"/nope.json"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist), "error %v is not ErrNotExist", err)
		assert.Contains(t, err.Error(), "/nope.json")
	})
	t.Run("write failure", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFiles(t, fsys, map[string]string{"/ok.json": "[]", "/bad.json": "[]"})
		b := &memBucket{fail: "bad"}
		u := &Uploader{Bucket: b, Fs: fsys, ID: "x", Parallel: 1}
		_, err := u.Upload(context.Background(), []string{"/ok.json", "/bad.json"})
		require.ErrorContains(t, err, "write refused")
		// The aborted writer's close error is reported too.
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, b.names(), "x-bad.json")
	})
	t.Run("cancelled", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFiles(t, fsys, map[string]string{"/m.json": "[]"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		u := &Uploader{Bucket: &memBucket{}, Fs: fsys, ID: "x"}
		_, err := u.Upload(ctx, []string{"/m.json"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestGCSClientOptions(t *testing.T) {
	assert.Empty(t, GCSOptions{}.clientOptions())
	assert.Len(t, GCSOptions{Endpoint: "http://localhost:4443/storage/v1/"}.clientOptions(), 2)
	assert.Len(t, GCSOptions{Token: "t", CredentialsFile: "c.json"}.clientOptions(), 1)
	assert.Len(t, GCSOptions{CredentialsFile: "c.json", Endpoint: "http://localhost"}.clientOptions(), 2)

	_, err := OpenGCS(context.Background(), "", GCSOptions{})
	require.Error(t, err)
}
