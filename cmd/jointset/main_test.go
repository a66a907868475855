package main

import (
	"bufio"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TrevorS/jointset"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeeds(t *testing.T) {
	seeds, err := parseSeeds(" 40/270, 80 / 90 ")
	require.NoError(t, err)
	assert.Equal(t, []jointset.Seed{{Plunge: 40, Trend: 270}, {Plunge: 80, Trend: 90}}, seeds)

	seeds, err = parseSeeds("")
	require.NoError(t, err)
	assert.Nil(t, seeds)

	for _, bad := range []string{"40", "40/x", "a/270", "1/2/3"} {
		_, err := parseSeeds(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadTable(t *testing.T) {
	in := "dip_direction,dip,site\n090,45,A\n\n# comment\n270, 10,B\n"
	table, err := readTable(strings.NewReader(in))
	require.NoError(t, err)
	if diff := cmp.Diff([][2]float64{{90, 45}, {270, 10}}, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	table, err = readTable(strings.NewReader("10,20\n30,40\n"))
	require.NoError(t, err)
	assert.Len(t, table, 2, "no header")
}

func TestReadTable_Errors(t *testing.T) {
	_, err := readTable(strings.NewReader("10,20\n30,abc\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = readTable(strings.NewReader("10,20\n30\n"))
	assert.ErrorContains(t, err, "need 2 columns")
}

func TestApplyFlags(t *testing.T) {
	fs := flag.NewFlagSet("jointset", flag.ContinueOnError)
	fs.Int("format", 1, "")
	fs.Float64("k", 1, "")
	fs.String("mode", "auto", "")
	fs.String("seeds", "", "")
	fs.String("algorithm", "alternate", "")
	fs.String("metric", "chord", "")
	fs.Int("max-iterations", 100, "")
	fs.Uint64("seed", 0, "")
	fs.Float64("significance", 0.05, "")
	fs.Int("workers", 0, "")
	require.NoError(t, fs.Parse([]string{"-k", "4", "-seed", "9", "-algorithm", "pam"}))

	mode := "manual"
	rc := &RunConfig{Mode: &mode}
	applyFlags(fs, rc)

	cfg := jointset.DefaultConfig()
	require.NoError(t, rc.Apply(&cfg))
	assert.Equal(t, 4, cfg.Classes)
	assert.Equal(t, uint64(9), cfg.RandomSeed)
	assert.Equal(t, jointset.AlgorithmPAM, cfg.Algorithm)
	assert.Equal(t, jointset.ModeManual, cfg.Mode, "unset flags keep the file value")
	assert.Nil(t, rc.Format)
}

func TestPrompt(t *testing.T) {
	cfg := jointset.DefaultConfig()
	scanner := bufio.NewScanner(strings.NewReader("three\n2.6\n\n"))

	next, ok := prompt(scanner, cfg)
	require.True(t, ok)
	assert.Equal(t, 3, next.Classes, "invalid answers are asked again")

	_, ok = prompt(scanner, next)
	assert.False(t, ok, "blank line ends the session")

	cfg.Mode = jointset.ModeManual
	next, ok = prompt(bufio.NewScanner(strings.NewReader("30/120\n")), cfg)
	require.True(t, ok)
	assert.Equal(t, []jointset.Seed{{Plunge: 30, Trend: 120}}, next.Seeds)
}

func TestOutputs(t *testing.T) {
	table := [][2]float64{}
	for i := 0; i < 15; i++ {
		table = append(table, [2]float64{float64(85 + i%5), float64(43 + i%4)})
		table = append(table, [2]float64{float64(265 + i%5), float64(8 + i%4)})
	}
	s, err := jointset.NewSession(table, jointset.FormatDipDirectionDip)
	require.NoError(t, err)
	cfg := jointset.DefaultConfig()
	cfg.Classes = 2
	cfg.RandomSeed = 5
	rep, err := s.Run(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	o := outputPaths{
		csv:  filepath.Join(dir, "classified.csv"),
		json: filepath.Join(dir, "report.json"),
		plot: filepath.Join(dir, "net.png"),
	}
	require.NoError(t, o.write(s, rep))

	data, err := os.ReadFile(o.csv)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "dip_direction,dip,class", lines[0])
	assert.Len(t, lines, 1+len(jointset.Export(s.Set, rep)))

	data, err = os.ReadFile(o.json)
	require.NoError(t, err)
	assert.Contains(t, string(data), rep.RunID)

	info, err := os.Stat(o.plot)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
