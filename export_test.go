package jointset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func exportFixture(t *testing.T) (*DualSet, *Report) {
	t.Helper()
	records, err := NewRecords([][2]float64{{10, 20}, {15, 25}, {200, 60}, {90, 5}}, FormatTrendPlunge)
	require.NoError(t, err)
	ds := NewDualSet(records)
	rep := &Report{
		Clustering: &Clustering{Labels: []int{1, 1, 2, 2, 3, 3, 4, 3}},
		Classes: []ClassResult{
			{ID: 1, Label: 1},
			{ID: 2, Label: 4},
		},
		Pruned: []int{2, 3},
	}
	return ds, rep
}

func TestExport_MapsClassesThroughReflections(t *testing.T) {
	ds, rep := exportFixture(t)
	got := Export(ds, rep)
	want := []ExportRow{
		{Index: 0, Values: [2]float64{10, 20}, Class: 1},
		{Index: 1, Values: [2]float64{15, 25}, Class: 1},
		{Index: 2, Values: [2]float64{200, 60}, Class: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Export mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	ds, rep := exportFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Export(ds, rep), FormatTrendPlunge))

	want := "trend,plunge,class\n" +
		"10,20,1\n" +
		"15,25,1\n" +
		"200,60,2\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_HeaderFollowsFormat(t *testing.T) {
	var buf bytes.Buffer
	rows := []ExportRow{{Index: 0, Values: [2]float64{45.5, 120}, Class: 3}}
	require.NoError(t, WriteCSV(&buf, rows, FormatDipDipDirection))
	if diff := cmp.Diff("dip,dip_direction,class\n45.5,120,3\n", buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_PropagatesWriteError(t *testing.T) {
	err := WriteCSV(failingWriter{}, []ExportRow{{Class: 1}}, FormatTrendPlunge)
	require.Error(t, err)
}
