package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSymbols(t *testing.T) {
	records := []wealth.HoldingRecord{
		{Symbol: "TCS", Category: wealth.Equity},
		{Symbol: "MSFT", Category: wealth.USEquity},
		{Symbol: "TCS", Category: wealth.Equity},
		{Symbol: "PARAG PARIKH FLEXI CAP", Category: wealth.MutualFund},
		{ISIN: "INE467B01029", Category: wealth.Equity},
	}
	assert.Equal(t, []string{"MSFT", "TCS"}, quoteSymbols(records))
	assert.Empty(t, quoteSymbols(nil))
}

func TestLoadConfig_Flags(t *testing.T) {
	for _, k := range []string{"WEALTH_STATEMENTS_DIR", "WEALTH_SNAPSHOT", "WEALTH_LOG_LEVEL", "WEALTH_USD_INR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: Asha\npaths:\n  statements: from-file\n"), 0o644))

	save := func(p *string, v string) {
		old := *p
		*p = v
		t.Cleanup(func() { *p = old })
	}
	save(configFiles, path+", "+filepath.Join(dir, "missing.toml"))
	save(statementsDir, "")
	save(snapshotFile, filepath.Join(dir, "out.json"))
	save(logLevel, "debug")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Asha", cfg.Profile.Name)
	assert.Equal(t, "from-file", cfg.Paths.Statements)
	assert.Equal(t, filepath.Join(dir, "out.json"), cfg.Paths.Snapshot)
	assert.Equal(t, "debug", cfg.Logging.Level)

	*statementsDir = "from-flag"
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Paths.Statements)
}

func TestDiscoveryMarkdown(t *testing.T) {
	mod := time.Date(2024, 4, 5, 10, 30, 0, 0, time.Local).UnixNano()
	d := &statement.Discovery{
		Matches: []statement.Match{
			{Path: "/s/console_holdings_old.xlsx", Source: "zerodha", ModTime: mod - 1},
			{Path: "/s/console_holdings.xlsx", Source: "zerodha", ModTime: mod},
			{Path: "/s/upstox_holdings.csv", Source: "upstox", ModTime: mod},
		},
		Unrecognized: []string{"/s/notes.txt"},
		Ambiguous:    []*wealth.AmbiguousFileError{{Path: "/s/holdings.csv", Sources: []string{"dhan", "upstox"}}},
	}
	md := discoveryMarkdown("/s", d, []string{"zerodha"})

	assert.Contains(t, md, "# Statements in /s")
	assert.Contains(t, md, "| console_holdings.xlsx | zerodha | 2024-04-05 10:30 | parsed |")
	assert.Contains(t, md, "| console_holdings_old.xlsx | zerodha |")
	assert.Contains(t, md, "| superseded |")
	assert.Contains(t, md, "| upstox_holdings.csv | upstox | 2024-04-05 10:30 | disabled |")
	assert.Contains(t, md, "| holdings.csv | dhan, upstox | | ambiguous |")
	assert.Contains(t, md, "| notes.txt | | | unrecognized |")

	assert.Contains(t, discoveryMarkdown("/empty", &statement.Discovery{}, nil), "_No files._")
}

func TestSourcesMarkdown(t *testing.T) {
	md := sourcesMarkdown(statement.DefaultRegistry(), []string{"zerodha", "robinhood"}, []string{"robinhood"})

	rows := map[string]string{}
	for _, line := range strings.Split(md, "\n") {
		if cells := strings.Split(line, "|"); len(cells) > 2 {
			rows[strings.TrimSpace(cells[1])] = line
		}
	}
	require.Contains(t, rows, "zerodha")
	assert.True(t, strings.HasPrefix(rows["zerodha"], "| zerodha | Zerodha |"), rows["zerodha"])
	assert.True(t, strings.HasSuffix(rows["zerodha"], "| yes |"), rows["zerodha"])
	assert.True(t, strings.HasSuffix(rows["groww"], "| no |"), rows["groww"])
	assert.Equal(t, "| robinhood | | | unknown |", rows["robinhood"])
	assert.Contains(t, md, "Sources absent from the `brokers` configuration are enabled.")
}
