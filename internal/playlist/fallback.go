package playlist

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/grafov/m3u8"
)

// parseFallback runs the strict library parser and maps its structured
// manifest onto the same shapes the manual parser produces.
func parseFallback(text string) (*Manifest, []variant, error) {
	p, listType, err := m3u8.DecodeFrom(bufio.NewReader(strings.NewReader(text)), false)
	if err != nil {
		return nil, nil, err
	}

	switch listType {
	case m3u8.MASTER:
		master := p.(*m3u8.MasterPlaylist)
		var variants []variant
		for _, v := range master.Variants {
			if v == nil {
				continue
			}
			variants = append(variants, variant{
				uri:        v.URI,
				bandwidth:  int(v.Bandwidth),
				resolution: v.Resolution,
			})
		}
		return &Manifest{}, variants, nil

	case m3u8.MEDIA:
		media := p.(*m3u8.MediaPlaylist)
		man := &Manifest{
			TargetDuration: media.TargetDuration,
			MediaSequence:  int(media.SeqNo),
			Version:        int(media.Version()),
			EndList:        media.Closed,
		}
		for _, s := range media.Segments {
			if s == nil {
				continue
			}
			man.Segments = append(man.Segments, Segment{
				URI:      s.URI,
				Duration: s.Duration,
				Index:    len(man.Segments),
			})
		}
		return man, nil, nil
	}

	return nil, nil, fmt.Errorf("unrecognized playlist type")
}
