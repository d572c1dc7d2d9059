package source

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/obswatch/lenswatch/internal/star"
)

// LiveRecord is one decoded row of a live frame, between its "start"
// and "end" markers (spec.md §6).
type LiveRecord struct {
	Filename    string
	StarID      star.StarID
	Mag         float32
	Timestamp   float64
	Ellipticity float32
}

// LiveFrameReader decodes the line-oriented live feed: alternating
// "start"/filename/records.../"end" frames. Malformed numeric fields
// cause the containing record to be skipped, not the frame (spec.md
// §6).
type LiveFrameReader struct {
	scanner  *bufio.Scanner
	filename string
	inFrame  bool
}

// NewLiveFrameReader wraps any io.Reader (the --gwac-file stream
// opened by cmd/lenswatch, a strings.Reader in tests).
func NewLiveFrameReader(r io.Reader) *LiveFrameReader {
	return &LiveFrameReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next valid record, skipping frame markers and
// malformed lines. It returns io.EOF once the underlying feed closes
// (spec.md §4.8: "an empty/closed feed signals shutdown").
func (r *LiveFrameReader) Next() (LiveRecord, error) {
	for r.scanner.Scan() {
		var line = strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "start":
			r.inFrame = true
			r.filename = ""

			continue
		case "end":
			r.inFrame = false

			continue
		}

		if !r.inFrame {
			continue
		}

		if r.filename == "" {
			r.filename = line

			continue
		}

		var rec, ok = parseLiveRecord(r.filename, line)
		if !ok {
			continue
		}

		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return LiveRecord{}, &SourceError{Cause: err}
	}

	return LiveRecord{}, io.EOF
}

// parseLiveRecord decodes "xpix ypix ra dec zone star_id mag timestamp
// ellipticity ccd"; only star_id, mag, timestamp, and ellipticity are
// kept. A malformed numeric field skips the record (ok=false).
func parseLiveRecord(filename, line string) (LiveRecord, bool) {
	var fields = strings.Fields(line)
	if len(fields) < 10 {
		return LiveRecord{}, false
	}

	var mag, magErr = strconv.ParseFloat(fields[6], 32)
	if magErr != nil {
		return LiveRecord{}, false
	}

	var ts, tsErr = strconv.ParseFloat(fields[7], 64)
	if tsErr != nil {
		return LiveRecord{}, false
	}

	var ell, ellErr = strconv.ParseFloat(fields[8], 32)
	if ellErr != nil {
		return LiveRecord{}, false
	}

	return LiveRecord{
		Filename:    filename,
		StarID:      star.StarID(fields[5]),
		Mag:         float32(mag),
		Timestamp:   ts,
		Ellipticity: float32(ell),
	}, true
}
