package main_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/scout/cmd/scout"
	"github.com/fwojciec/scout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linkedSites starts two servers on different ports. The first links to
// the second, the second links back to the first and to one of its own
// pages.
func linkedSites(t *testing.T) (a, b *httptest.Server) {
	t.Helper()

	var bURL string
	a = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprintf(w, `<html><body><a href="%s/">b</a></body></html>`, bURL)
			return
		}
		fmt.Fprint(w, `<html><body>other</body></html>`)
	}))
	t.Cleanup(a.Close)

	b = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprintf(w, `<html><body><a href="%s/other">a</a><a href="%s/about">about</a></body></html>`,
				a.URL, "http://"+r.Host)
			return
		}
		fmt.Fprint(w, `<html><body>about</body></html>`)
	}))
	t.Cleanup(b.Close)
	bURL = b.URL

	return a, b
}

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Host
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "scout")
	assert.Contains(t, stdout.String(), "--workers")
	assert.Contains(t, stdout.String(), "--links")
	assert.Contains(t, stdout.String(), "--output")
}

func TestMain_Run_UnknownFlag(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--bogus"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_MalformedFlag(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"-w", "many"}, &stdout, &stderr)

	require.Error(t, err)
}

func TestMain_Run_RejectsNonPositiveLimits(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{name: "workers", args: []string{"-w", "0"}, want: "workers must be at least 1"},
		{name: "links", args: []string{"-l", "0"}, want: "links must be at least 1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			m := main.NewMain()
			var stdout, stderr bytes.Buffer
			args := append(tc.args, "--log", filepath.Join(dir, "scout.log"), "-o", filepath.Join(dir, "out.txt"), "http://example.com")

			err := m.Run(context.Background(), args, &stdout, &stderr)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.NoFileExists(t, filepath.Join(dir, "out.txt"))
		})
	}
}

func TestMain_Run_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("writes domain graph", func(t *testing.T) {
		t.Parallel()

		a, b := linkedSites(t)
		dir := t.TempDir()
		out := filepath.Join(dir, "out.txt")
		logPath := filepath.Join(dir, "scout.log")

		m := main.NewMain()
		var stdout, stderr bytes.Buffer
		err := m.Run(context.Background(), []string{
			"-w", "2", "-l", "10", "-o", out, "--log", logPath, a.URL + "/",
		}, &stdout, &stderr)

		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		hostA, hostB := hostOf(t, a.URL), hostOf(t, b.URL)
		assert.Equal(t, hostA+"\t"+hostB+"\n"+hostB+"\t"+hostA+"\n", string(data))
		assert.Contains(t, stdout.String(), "wrote 2 edges to "+out)
		assert.NotContains(t, stdout.String(), "Exiting gracefully")

		logs, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(logs), "write graph")
	})

	t.Run("stores crawl in database", func(t *testing.T) {
		t.Parallel()

		a, _ := linkedSites(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "scout.db")

		m := main.NewMain()
		var stdout, stderr bytes.Buffer
		err := m.Run(context.Background(), []string{
			"-l", "10",
			"-o", filepath.Join(dir, "out.txt"),
			"--log", filepath.Join(dir, "scout.log"),
			"--db", dbPath,
			a.URL + "/",
		}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Stored crawl")

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var edges int
		err = db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM edges").Scan(&edges)
		require.NoError(t, err)
		assert.Equal(t, 2, edges)
	})

	t.Run("appends to existing log", func(t *testing.T) {
		t.Parallel()

		a, _ := linkedSites(t)
		dir := t.TempDir()
		logPath := filepath.Join(dir, "scout.log")
		require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0644))

		m := main.NewMain()
		err := m.Run(context.Background(), []string{
			"-l", "10", "-o", filepath.Join(dir, "out.txt"), "--log", logPath, a.URL + "/",
		}, io.Discard, io.Discard)
		require.NoError(t, err)

		logs, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(logs), "previous run\n"))
	})

	t.Run("draws progress on a terminal", func(t *testing.T) {
		t.Parallel()

		a, _ := linkedSites(t)
		dir := t.TempDir()

		m := main.NewMain()
		m.IsTerminal = func(io.Writer) bool { return true }
		m.Width = func() (int, error) { return 60, nil }
		var stdout, stderr bytes.Buffer
		err := m.Run(context.Background(), []string{
			"-l", "10", "-o", filepath.Join(dir, "out.txt"), "--log", filepath.Join(dir, "scout.log"), a.URL + "/",
		}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "\r")
		assert.Contains(t, stdout.String(), "/10...")
	})

	t.Run("writes partial graph when interrupted", func(t *testing.T) {
		t.Parallel()

		a, _ := linkedSites(t)
		dir := t.TempDir()
		out := filepath.Join(dir, "out.txt")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		m := main.NewMain()
		var stdout, stderr bytes.Buffer
		err := m.Run(ctx, []string{
			"-o", out, "--log", filepath.Join(dir, "scout.log"), a.URL + "/",
		}, &stdout, &stderr)

		require.NoError(t, err)
		assert.FileExists(t, out)
		assert.Contains(t, stdout.String(), "Exiting gracefully")
	})
}

func TestDefaultSeeds(t *testing.T) {
	t.Parallel()

	assert.Len(t, main.DefaultSeeds, 21)
	for _, seed := range main.DefaultSeeds {
		assert.True(t, strings.HasPrefix(seed, "http://"), seed)
	}
}
