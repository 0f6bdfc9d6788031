package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/config"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	empty, off := "", false
	ConfigPath, CacheDir, IndexURL = &empty, &empty, &empty
	Verbose, NoCache, AllPaths = &off, &off, &off
	t.Cleanup(func() {
		ConfigPath, CacheDir, IndexURL = nil, nil, nil
		Verbose, NoCache, AllPaths = nil, nil, nil
		logger.InitLogger("info", logger.FormatText)
	})
}

func TestLoadConfigOverrides(t *testing.T) {
	resetFlags(t)
	logger.SetTestOutput(&bytes.Buffer{})
	defer logger.UnsetTestOutput()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	saved := config.DefaultConfig()
	saved.Settings.CacheDir = "/from/file"
	require.NoError(t, saved.SaveConfig(cfgPath))

	ConfigPath = &cfgPath
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.Settings.CacheDir)
	assert.True(t, cfg.Settings.OnlyAuthors)
	assert.False(t, logger.DebugEnabled())

	t.Setenv(config.EnvCacheDir, "/from/env")
	t.Setenv(config.EnvIndexURL, "http://env.example/index.gz")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Settings.CacheDir)
	assert.Equal(t, "http://env.example/index.gz", cfg.Settings.IndexURL)

	flagDir, flagURL, on := "/from/flag", "http://flag.example/index.gz", true
	CacheDir, IndexURL = &flagDir, &flagURL
	AllPaths, NoCache, Verbose = &on, &on, &on
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Settings.CacheDir)
	assert.Equal(t, "http://flag.example/index.gz", cfg.Settings.IndexURL)
	assert.False(t, cfg.Settings.OnlyAuthors)
	assert.True(t, cfg.Settings.NoCache)
	assert.True(t, logger.DebugEnabled())
}

func TestLoadConfigLogFormat(t *testing.T) {
	resetFlags(t)
	buf := &bytes.Buffer{}
	logger.SetTestOutput(buf)
	defer logger.UnsetTestOutput()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	saved := config.DefaultConfig()
	saved.Settings.LogFormat = "json"
	require.NoError(t, saved.SaveConfig(cfgPath))

	ConfigPath = &cfgPath
	_, err := loadConfig()
	require.NoError(t, err)

	logger.Info("Index loaded")
	assert.Contains(t, buf.String(), `"msg":"Index loaded"`)
}

func TestLoadConfigRejectsBadFile(t *testing.T) {
	resetFlags(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("settings:\n  cache_ttl: [1, 2]\n"), 0o600))

	ConfigPath = &cfgPath
	_, err := loadConfig()
	assert.Error(t, err)
}

func TestReleaseTree(t *testing.T) {
	dist := &model.Dist{Name: "Acme-Colour", NumReleases: 3}
	releases := []model.Release{
		{File: "authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", Dist: "Acme-Colour", Version: "0.16", CPANID: "LBROCARD", Maturity: model.MaturityReleased, Date: 1100000000},
		{File: "authors/id/A/AC/ACME/Acme-Colour-0.17_01.tar.gz", Dist: "Acme-Colour", Version: "0.17_01", CPANID: "ACME", Maturity: model.MaturityDeveloper, Date: 1100000100},
		{File: "authors/id/L/LB/LBROCARD/Acme-Colour-0.20.tar.gz", Dist: "Acme-Colour", Version: "0.20", CPANID: "LBROCARD", Maturity: model.MaturityReleased, Date: 1100000500},
	}

	tree := releaseTree(dist, releases)
	assert.Equal(t, "Acme-Colour (3 releases)", tree.Text())
	require.Len(t, tree.Items(), 2)
	assert.Equal(t, "LBROCARD", tree.Items()[0].Text())
	assert.Len(t, tree.Items()[0].Items(), 2)
	assert.Equal(t, "ACME", tree.Items()[1].Text())

	out := tree.Print()
	assert.Contains(t, out, "0.17_01  2004-11-09 11:35:00  [dev]")
	assert.Contains(t, out, "Acme-Colour-0.20.tar.gz")
	assert.Equal(t, 1, strings.Count(out, "LBROCARD"))
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "zero size", got: formatSize(0), want: "0 B"},
		{name: "small size", got: formatSize(1000), want: "1000 B"},
		{name: "kibibytes", got: formatSize(1536), want: "1.5 KiB"},
		{name: "negative size", got: formatSize(-5), want: "-5 B"},
		{name: "date is utc", got: formatDate(1100000000), want: "2004-11-09 11:33:20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
