package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/typesafety/criteria"
)

// safeBuffer is a thread-safe buffer for capturing log output in tests.
type safeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

func setupAppTest(t *testing.T, format string) (*App, *bytes.Buffer, *safeBuffer) {
	t.Helper()
	cfg, err := NewConfig(Config{LogLevel: "debug", LogFormat: format})
	require.NoError(t, err)

	scope := criteria.NewScope()
	scope.RegisterPredicate("positive", func(v int) bool { return v > 0 })

	out := &bytes.Buffer{}
	logs := &safeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("TYPESAFETY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return NewApp(out, logs, cfg, scope), out, logs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, &Config{LogFormat: "text", LogLevel: "info"}, cfg)

	_, err = NewConfig(Config{LogFormat: "xml"})
	require.ErrorContains(t, err, "invalid log format")

	_, err = NewConfig(Config{LogLevel: "trace"})
	require.ErrorContains(t, err, "invalid log level")
}

func TestApp_Check(t *testing.T) {
	t.Parallel()
	app, out, logs := setupAppTest(t, "json")
	dir := t.TempDir()
	src := `
contract "Add" {
  description = "sum"
  args        = [positive, positive]
  returns     = int
}
contract "Name" {
  returns = optional(string)
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(src), 0o644))

	set, err := app.Check(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "Add(positive, positive) int  # sum\nName() Optional[string]\n", out.String())
	assert.Contains(t, logs.String(), `"msg":"Contracts are well formed."`)
}

func TestApp_CheckFails(t *testing.T) {
	t.Parallel()
	app, out, _ := setupAppTest(t, "text")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(`contract "A" { args = [widget] }`), 0o644))

	_, err := app.Check(context.Background(), dir)
	require.ErrorIs(t, err, criteria.ErrInvalidCriteria)
	assert.Empty(t, out.String())
}

func TestApp_Match(t *testing.T) {
	t.Parallel()
	app, out, _ := setupAppTest(t, "text")

	v, err := app.Match(context.Background(), "optional(int)", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, "42\n", out.String())

	_, err = app.Match(context.Background(), "[string, positive]", "-1")
	require.ErrorIs(t, err, criteria.ErrTypeMismatch)

	_, err = app.Match(context.Background(), "widget", "1")
	require.ErrorIs(t, err, criteria.ErrInvalidCriteria)

	_, err = app.Match(context.Background(), "int", "foo")
	require.ErrorContains(t, err, `invalid value "foo"`)
}

func TestApp_Valid(t *testing.T) {
	t.Parallel()
	app, out, logs := setupAppTest(t, "text")

	assert.True(t, app.Valid(context.Background(), "[int, null]"))
	assert.False(t, app.Valid(context.Background(), "42"))
	assert.False(t, app.Valid(context.Background(), "oneof()"))
	assert.Equal(t, "true\nfalse\nfalse\n", out.String())
	assert.Contains(t, logs.String(), "Criteria rejected.")
}
