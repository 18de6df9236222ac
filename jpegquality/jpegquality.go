// Package jpegquality estimates the quality setting an existing JPEG was
// encoded with by inspecting its luminance quantization table. Knowing the
// original quality lets callers skip re-encoding images that are already at
// or below the requested level.
package jpegquality

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	// ErrInvalidJPEG is returned when the data does not start with a JPEG SOI marker.
	ErrInvalidJPEG = errors.New("invalid JPEG header")
	// ErrNoQuantTable is returned when no DQT segment is found before image data.
	ErrNoQuantTable = errors.New("no quantization table found")
)

// stdLuminanceQuant is the Annex K luminance table used as the quality 50
// reference by libjpeg style encoders, in zigzag order.
var stdLuminanceQuant = [64]int{
	16, 11, 12, 14, 12, 10, 16, 14,
	13, 14, 18, 17, 16, 19, 24, 40,
	26, 24, 22, 22, 24, 49, 35, 37,
	29, 40, 58, 51, 61, 60, 57, 51,
	56, 55, 64, 72, 92, 78, 64, 68,
	87, 69, 55, 56, 80, 109, 81, 87,
	95, 98, 103, 104, 103, 62, 77, 113,
	121, 112, 100, 120, 92, 101, 103, 99,
}

// Reader holds the detected quality of a single JPEG stream.
type Reader struct {
	quality int
}

// New reads a JPEG stream and estimates its encoding quality.
func New(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewWithBytes(data)
}

// NewWithBytes estimates encoding quality of JPEG data held in memory.
func NewWithBytes(data []byte) (*Reader, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, ErrInvalidJPEG
	}

	table, err := findLuminanceTable(data[2:])
	if err != nil {
		return nil, err
	}
	return &Reader{quality: estimateQuality(table)}, nil
}

// Quality returns the estimated encoding quality in the 1..100 range.
func (r *Reader) Quality() int {
	return r.quality
}

// findLuminanceTable walks JPEG marker segments until it locates table 0 in
// a DQT segment. Scan data (SOS) terminates the search.
func findLuminanceTable(data []byte) ([64]int, error) {
	var table [64]int

	for len(data) >= 4 {
		if data[0] != 0xFF {
			return table, ErrInvalidJPEG
		}
		marker := data[1]
		if marker == 0xFF { // fill byte
			data = data[1:]
			continue
		}
		if marker == 0xD9 || marker == 0xDA { // EOI or SOS
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[2:4]))
		if segLen < 2 || len(data) < 2+segLen {
			return table, ErrInvalidJPEG
		}
		if marker == 0xDB { // DQT
			if tbl, ok := parseDQT(data[4 : 2+segLen]); ok {
				return tbl, nil
			}
		}
		data = data[2+segLen:]
	}
	return table, ErrNoQuantTable
}

// parseDQT extracts quantization table 0 from a DQT segment payload. A single
// segment may carry several tables, each prefixed with a precision/id byte.
func parseDQT(seg []byte) ([64]int, bool) {
	var table [64]int

	for len(seg) > 0 {
		precision := seg[0] >> 4
		id := seg[0] & 0x0F
		seg = seg[1:]

		size := 64
		if precision > 0 {
			size = 128
		}
		if len(seg) < size {
			return table, false
		}

		if id == 0 {
			for i := range 64 {
				if precision > 0 {
					table[i] = int(binary.BigEndian.Uint16(seg[i*2:]))
				} else {
					table[i] = int(seg[i])
				}
			}
			return table, true
		}
		seg = seg[size:]
	}
	return table, false
}

// estimateQuality inverts the libjpeg quality scaling formula. For q >= 50
// the reference table is scaled by (200-2q)/100, below that by 50/q, so the
// average scaling factor over all coefficients recovers q closely enough.
func estimateQuality(table [64]int) int {
	var sum, ref int
	for i := range 64 {
		sum += table[i]
		ref += stdLuminanceQuant[i]
	}
	if sum == 0 {
		return 100
	}

	// scale factor in percent, averaged over the whole table
	scale := float64(sum) * 100.0 / float64(ref)

	var q float64
	if scale <= 100 {
		q = (200 - scale) / 2
	} else {
		q = 5000 / scale
	}

	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return int(q + 0.5)
}
