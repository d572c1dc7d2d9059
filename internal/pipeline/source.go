package pipeline

import (
	"io"

	"github.com/obswatch/lenswatch/internal/source"
	"github.com/obswatch/lenswatch/internal/star"
)

// tickSource delivers one tick's worth of samples into a starTable.
// advance reports done=true once the underlying feed is exhausted
// (offline) or closed (live), per spec.md §4.8.
type tickSource interface {
	advance(table *starTable) (done bool, err error)
}

// offlineSource replays each star's precomputed sample vector,
// pushing one entry per known star per tick until every vector is
// exhausted (spec.md §4.8).
type offlineSource struct {
	params  star.Params
	samples map[star.StarID][]float32
	cursor  map[star.StarID]int
}

func newOfflineSource(samples map[star.StarID][]float32, params star.Params) *offlineSource {
	return &offlineSource{
		params:  params,
		samples: samples,
		cursor:  make(map[star.StarID]int, len(samples)),
	}
}

func (s *offlineSource) advance(table *starTable) (bool, error) {
	var anyRemaining bool

	for id, vals := range s.samples {
		table.ensure(id, s.params)

		var c = s.cursor[id]
		if c >= len(vals) {
			continue
		}

		table.push(id, vals[c])
		s.cursor[id] = c + 1

		if c+1 < len(vals) {
			anyRemaining = true
		}
	}

	return !anyRemaining, nil
}

// liveSource reads one record per tick from a LiveFrameReader,
// inserting a new star on first sight (spec.md §4.8). It signals done
// when the feed closes.
type liveSource struct {
	params star.Params
	reader *source.LiveFrameReader
}

func newLiveSource(reader *source.LiveFrameReader, params star.Params) *liveSource {
	return &liveSource{params: params, reader: reader}
}

func (s *liveSource) advance(table *starTable) (bool, error) {
	var rec, err = s.reader.Next()
	if err == io.EOF {
		return true, nil
	}

	if err != nil {
		return true, err
	}

	table.ensure(rec.StarID, s.params)
	table.push(rec.StarID, rec.Mag)

	return false, nil
}
