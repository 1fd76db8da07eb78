package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/blobstore"
	"github.com/hupe1980/kernelscore/dictionary"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/kernel"
	"github.com/hupe1980/kernelscore/persistence"
	"github.com/hupe1980/kernelscore/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeModel saves a model with dictionary [f:a, f:b] and one linear support
// vector at [1, 0] with weight 2.
func writeModel(t *testing.T, path string) *kernelscore.KernelModel {
	t.Helper()

	dict := dictionary.New()
	dict.Add("f", "a")
	dict.Add("f", "b")

	sv, err := kernelscore.NewSupportVector(kernel.Linear, kernel.Params{Point: []float32{1, 0}}, 2)
	require.NoError(t, err)
	m := kernelscore.New().SetDictionary(dict).AddSupportVector(sv)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, m.Save(f))
	return m
}

func readModel(t *testing.T, path string) *kernelscore.KernelModel {
	t.Helper()
	m, err := persistence.Open(context.Background(), blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path))
	require.NoError(t, err)
	return m
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jsonl")
	writeModel(t, path)

	out, err := run(t, "", "inspect", "--model", path)
	require.NoError(t, err)
	assert.Contains(t, out, "model_type:      kernel")
	assert.Contains(t, out, "compression:     none")
	assert.Contains(t, out, "dictionary_size: 2")
	assert.Contains(t, out, "support_vectors: 1")
	assert.Contains(t, out, "linear:")
}

func TestScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jsonl")
	writeModel(t, path)

	input := `{"floats":{"f":{"a":1}}}

{"floats":{"f":{"a":0.5,"b":3}}}
{"floats":{"g":{"x":1}}}
`
	out, err := run(t, input, "score", "--model", path)
	require.NoError(t, err)
	assert.Equal(t, "2\n1\n0\n", out)
}

func TestScoreBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jsonl")
	writeModel(t, path)

	_, err := run(t, "{\"floats\":{}}\nnot json\n", "score", "--model", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.jsonl")
	out := filepath.Join(dir, "updated.jsonl")
	writeModel(t, path)

	input := `{"gradient":1,"features":{"floats":{"f":{"a":1}}}}` + "\n"
	stdout, err := run(t, input, "update", "--model", path, "--out", out, "--lr", "0.5", "--journal", filepath.Join(dir, "journal"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "applied 1 updates")

	m := readModel(t, out)
	require.Len(t, m.SupportVectors(), 1)
	assert.Equal(t, float32(1.5), m.SupportVectors()[0].Weight())

	// The journal is truncated after the save.
	j, err := wal.New(func(o *wal.Options) { o.Path = filepath.Join(dir, "journal") })
	require.NoError(t, err)
	defer j.Close()
	n, err := j.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateRefusesPendingJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.jsonl")
	journal := filepath.Join(dir, "journal")
	writeModel(t, path)

	j, err := wal.New(func(o *wal.Options) { o.Path = journal })
	require.NoError(t, err)
	_, err = j.Append(1, 0.5, feature.New().Set("f", "a", 1))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = run(t, "", "update", "--model", path, "--out", path, "--journal", journal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recover")

	stdout, err := run(t, "", "recover", "--model", path, "--journal", journal, "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "replayed 1 updates")
	assert.Equal(t, float32(1.5), readModel(t, path).SupportVectors()[0].Weight())

	// Recovered updates are not applied twice.
	_, err = run(t, "", "recover", "--model", path, "--journal", journal, "--out", path)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), readModel(t, path).SupportVectors()[0].Weight())
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.jsonl")
	want := writeModel(t, path)

	for _, c := range []string{"zstd", "lz4", "none"} {
		out := filepath.Join(dir, "model."+c)
		stdout, err := run(t, "", "convert", "--model", path, "--out", out, "--compression", c)
		require.NoError(t, err)
		assert.Contains(t, stdout, "("+c+",")

		assert.True(t, want.Equal(readModel(t, out)), c)

		inspect, err := run(t, "", "inspect", "--model", out)
		require.NoError(t, err)
		assert.Contains(t, inspect, "compression:     "+c)
	}

	_, err := run(t, "", "convert", "--model", path, "--out", filepath.Join(dir, "x"), "--compression", "brotli")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "store")
	require.NoError(t, os.MkdirAll(root, 0o750))
	writeModel(t, filepath.Join(root, "model.jsonl"))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level: error
codec: json
compression: zstd
store:
  kind: local
  root: `+strconv.Quote(root)+`
`), 0o600))

	_, err := run(t, "", "--config", cfgPath, "convert", "--model", "model.jsonl", "--out", "packed/model.zst")
	require.NoError(t, err)

	info, err := persistence.Stat(context.Background(), blobstore.NewLocalStore(root), "packed/model.zst")
	require.NoError(t, err)
	assert.Equal(t, persistence.CompressionZstd, info.Compression)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown_key: 1\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jsonl")
	writeModel(t, path)

	_, err := run(t, "", "--log-level", "loud", "inspect", "--model", path)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Store.Kind = "ftp"
	_, _, err = cfg.Resolve(context.Background(), "model")
	assert.Error(t, err)

	cfg.Codec = "xml"
	_, err = cfg.RecordCodec()
	assert.Error(t, err)
}
