package jointset

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ExportRow is one classified input record in its original convention.
type ExportRow struct {
	Index  int        `json:"index"`
	Values [2]float64 `json:"values"`
	Class  int        `json:"class"`
}

// Export maps the report's retained classes back onto the input records.
// A record is exported with the first retained class found for its vector
// or, failing that, for its reflection. Records whose classes were both
// pruned are omitted.
func Export(ds *DualSet, rep *Report) []ExportRow {
	ids := make(map[int]int, len(rep.Classes))
	for _, c := range rep.Classes {
		ids[c.Label] = c.ID
	}

	labels := rep.Clustering.Labels
	rows := make([]ExportRow, 0, ds.N)
	for i := 0; i < ds.N; i++ {
		id, ok := ids[labels[i]]
		if !ok {
			id, ok = ids[labels[ds.Antipode(i)]]
		}
		if !ok {
			continue
		}
		rows = append(rows, ExportRow{Index: i, Values: ds.Records[i].Source, Class: id})
	}
	return rows
}

// WriteCSV writes rows as a flat numeric table with a header naming the
// input columns of format f followed by the class.
func WriteCSV(w io.Writer, rows []ExportRow, f Format) error {
	cw := csv.NewWriter(w)
	cols := f.Columns()
	if err := cw.Write([]string{cols[0], cols[1], "class"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.Values[0], 'g', -1, 64),
			strconv.FormatFloat(r.Values[1], 'g', -1, 64),
			strconv.Itoa(r.Class),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
