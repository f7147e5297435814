package playlist

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	bandwidthRe  = regexp.MustCompile(`BANDWIDTH=(\d+)`)
	resolutionRe = regexp.MustCompile(`RESOLUTION=(\d+x\d+)`)
)

// parseManual is the tolerant line-oriented parser. It never fails; a
// document it cannot make sense of simply yields no variants and no
// segments, which sends the resolver to the fallback parser.
func parseManual(text string) (*Manifest, []variant) {
	man := &Manifest{}
	var variants []variant

	// Classify first: a master playlist carries stream-info tags, a media
	// playlist carries segment directives. Anything else (an error page, a
	// redirect stub) must not have its bare lines mistaken for URIs.
	if !strings.Contains(text, "#EXT-X-STREAM-INF") && !strings.Contains(text, "#EXTINF") {
		return man, nil
	}

	// pendingDuration < 0 means no #EXTINF preceded the next URI line; such
	// segments inherit the target duration.
	pendingDuration := -1.0
	var pendingStream *variant

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-VERSION:"):
			if v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "#EXT-X-VERSION:"))); err == nil {
				man.Version = v
			}

		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			if d, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:")), 64); err == nil {
				man.TargetDuration = d
			}

		case strings.HasPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"):
			if s, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"))); err == nil {
				man.MediaSequence = s
			}

		case strings.HasPrefix(line, "#EXT-X-ENDLIST"):
			man.EndList = true

		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			v := parseStreamInf(line)
			pendingStream = &v

		case strings.HasPrefix(line, "#EXTINF:"):
			attrs := strings.SplitN(strings.TrimPrefix(line, "#EXTINF:"), ",", 2)
			if d, err := strconv.ParseFloat(strings.TrimSpace(attrs[0]), 64); err == nil {
				pendingDuration = d
			}

		case strings.HasPrefix(line, "#"):
			// Other tags (keys, byte ranges, discontinuities) are ignored.

		default:
			if pendingStream != nil {
				pendingStream.uri = line
				variants = append(variants, *pendingStream)
				pendingStream = nil
				continue
			}
			d := pendingDuration
			if d < 0 {
				d = man.TargetDuration
			}
			man.Segments = append(man.Segments, Segment{
				URI:      line,
				Duration: d,
				Index:    len(man.Segments),
			})
			pendingDuration = -1
		}
	}

	return man, variants
}

func parseStreamInf(line string) variant {
	var v variant
	if m := bandwidthRe.FindStringSubmatch(line); m != nil {
		if bw, err := strconv.Atoi(m[1]); err == nil {
			v.bandwidth = bw
		}
	}
	if m := resolutionRe.FindStringSubmatch(line); m != nil {
		v.resolution = m[1]
	}
	return v
}
