// Package export reads and writes the gamut tables as CSV.
//
// Column contract:
//
//	cusps:   hue_floor,hex,L,L_r,c,h
//	outside: hue_floor,hex,hex_modeled,L,L_lower,L_upper,c,c_upper,L_outside
//
// In the cusp table L is corrected lightness and L_r raw Oklab lightness. In
// the outside table every lightness is raw, since the triangle model is
// defined on raw lightness. Numbers carry exactly two decimals.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/gamut"
	"github.com/jszwec/csvutil"
)

// Fixed2 is a float written with two decimals.
type Fixed2 float64

// MarshalCSV rounds to two decimals. Negative zero is written as "0.00".
func (f Fixed2) MarshalCSV() ([]byte, error) {
	v := math.Round(float64(f)*100) / 100
	if v == 0 {
		v = 0 // no "-0.00"
	}
	return strconv.AppendFloat(nil, v, 'f', 2, 64), nil
}

// UnmarshalCSV accepts any decimal number, not only two-decimal ones.
func (f *Fixed2) UnmarshalCSV(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parsing number %q: %w", data, err)
	}
	*f = Fixed2(v)
	return nil
}

// CuspRow is one line of the cusp table.
type CuspRow struct {
	HueFloor int    `csv:"hue_floor"`
	Hex      string `csv:"hex"`
	L        Fixed2 `csv:"L"`
	LRaw     Fixed2 `csv:"L_r"`
	C        Fixed2 `csv:"c"`
	H        Fixed2 `csv:"h"`
}

// OutsideRow is one line of the outside-triangle table.
type OutsideRow struct {
	HueFloor   int    `csv:"hue_floor"`
	Hex        string `csv:"hex"`
	HexModeled string `csv:"hex_modeled"`
	L          Fixed2 `csv:"L"`
	LLower     Fixed2 `csv:"L_lower"`
	LUpper     Fixed2 `csv:"L_upper"`
	C          Fixed2 `csv:"c"`
	CUpper     Fixed2 `csv:"c_upper"`
	LOutside   Fixed2 `csv:"L_outside"`
}

// CuspRows converts cusps to rows, keeping their order.
func CuspRows(cusps []gamut.Cusp) []CuspRow {
	rows := make([]CuspRow, len(cusps))
	for i, c := range cusps {
		rows[i] = CuspRow{
			HueFloor: c.HueFloor,
			Hex:      c.Color.Hex(),
			L:        Fixed2(c.L),
			LRaw:     Fixed2(c.LRaw),
			C:        Fixed2(c.C),
			H:        Fixed2(c.H),
		}
	}
	return rows
}

// OutsideRows converts outside records to rows, keeping their order.
func OutsideRows(records []gamut.Outside) []OutsideRow {
	rows := make([]OutsideRow, len(records))
	for i, o := range records {
		rows[i] = OutsideRow{
			HueFloor:   o.HueFloor,
			Hex:        o.Color.Hex(),
			HexModeled: o.Modeled.Hex(),
			L:          Fixed2(o.L),
			LLower:     Fixed2(o.LLower),
			LUpper:     Fixed2(o.LUpper),
			C:          Fixed2(o.C),
			CUpper:     Fixed2(o.CUpper),
			LOutside:   Fixed2(o.Excess),
		}
	}
	return rows
}

// WriteCusps writes the cusp table with a header row.
func WriteCusps(w io.Writer, cusps []gamut.Cusp) error {
	return write(w, CuspRows(cusps))
}

// WriteOutside writes the outside-triangle table with a header row.
func WriteOutside(w io.Writer, records []gamut.Outside) error {
	return write(w, OutsideRows(records))
}

func write(w io.Writer, rows any) error {
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// ReadCusps loads a cusp table previously written by WriteCusps. Values come
// back at the two-decimal precision they were stored with.
func ReadCusps(r io.Reader) (*gamut.CuspTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	var rows []CuspRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding cusps: %w", err)
	}

	cusps := make([]gamut.Cusp, len(rows))
	for i, row := range rows {
		c, err := color.ParseHex(row.Hex)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		cusps[i] = gamut.Cusp{
			HueFloor: row.HueFloor,
			Color:    c,
			L:        float64(row.L),
			LRaw:     float64(row.LRaw),
			C:        float64(row.C),
			H:        float64(row.H),
			Index:    -1,
		}
	}

	t, err := gamut.NewCuspTable(cusps)
	if err != nil {
		return nil, fmt.Errorf("building cusp table: %w", err)
	}
	return t, nil
}
