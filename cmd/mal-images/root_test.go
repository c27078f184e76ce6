package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/mal-image-downloader/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeExport(t *testing.T, dir, imageURL string) string {
	t.Helper()
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" ?>
<myanimelist>
	<anime>
		<series_animedb_id>1</series_animedb_id>
		<series_title><![CDATA[Cowboy Bebop]]></series_title>
		<series_image>%s</series_image>
	</anime>
	<anime>
		<series_animedb_id>5</series_animedb_id>
		<series_title><![CDATA[Tengoku no Tobira]]></series_title>
	</anime>
</myanimelist>`, imageURL)
	path := filepath.Join(dir, "animelist.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRoot_MissingArgument(t *testing.T) {
	out, err := executeCommand(t)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "Usage:")
}

func TestRoot_FileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "animelist.xml")
	out, err := executeCommand(t, missing)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, missing+" not found")
}

func TestRoot_MalformedExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animelist.xml")
	require.NoError(t, os.WriteFile(path, []byte("<myanimelist><anime>"), 0644))

	_, err := executeCommand(t, path, "--output", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestRoot_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cover"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := writeExport(t, dir, srv.URL+"/1.jpg")
	outDir := filepath.Join(dir, "covers")

	out, err := executeCommand(t, path, "--output", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "MyAnimeList XML Image Downloader")
	assert.Contains(t, out, "Found 2 anime entries")
	assert.Contains(t, out, "[1/2] Cowboy Bebop")
	assert.Contains(t, out, "✓ Downloaded")
	assert.Contains(t, out, "Downloaded: 1/2")

	data, err := os.ReadFile(filepath.Join(outDir, "Cowboy Bebop_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "cover", string(data))
}

func TestRoot_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "https://cdn.example.com/1.jpg")
	outDir := filepath.Join(dir, "covers")

	out, err := executeCommand(t, path, "--output", outDir, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "[Dry run - not downloading]")
	assert.Contains(t, out, filepath.Join(outDir, "Cowboy Bebop_1.jpg"))
	assert.Contains(t, out, "(no image URL)")
	assert.NoDirExists(t, outDir)
}

func TestRoot_InvalidFlagValue(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "https://cdn.example.com/1.jpg")

	_, err := executeCommand(t, path, "--retries", "0")
	assert.Error(t, err)
}

func TestRoot_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "https://cdn.example.com/1.jpg")
	cfgPath := filepath.Join(dir, "settings.yaml")

	out, err := executeCommand(t, path, "--output", "covers", "--retries", "3", "--dry-run", "--save-config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Settings saved to "+cfgPath)

	saved, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "covers", saved.OutputDir)
	assert.Equal(t, 3, saved.DownloadMaxRetries)
}

func TestRoot_SaveConfigUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "https://cdn.example.com/1.jpg")

	_, err := executeCommand(t, path, "--dry-run", "--save-config", filepath.Join(dir, "settings.ini"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}

func TestLoadSettings_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output_dir = \"from-file\"\ndownload_max_retries = 2\n"), 0644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--retries", "7", "--resize", "300"}))

	opts := &options{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.retries, _ = cmd.Flags().GetInt("retries")
	opts.resize, _ = cmd.Flags().GetInt("resize")

	settings, err := loadSettings(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "from-file", settings.OutputDir)
	assert.Equal(t, 7, settings.DownloadMaxRetries)
	assert.True(t, settings.CoverArtResize)
	assert.Equal(t, 300, settings.CoverArtMaxSize)
}
