// Package engine drives downloads end to end. Two engines exist: a
// single-file engine for direct media URLs and a segmented engine for HLS
// playlists that fetches every segment and combines them into one file.
package engine

import "time"

// Hooks receive engine lifecycle events. Progress carries a 0-100 percent
// value alongside raw byte counters, the transfer rate in bytes per second
// and an ETA estimate in seconds (0 when not computable).
type Hooks struct {
	OnBegin    func(totalBytes int64)
	OnProgress func(progress float64, downloadedBytes, totalBytes int64, rate, eta float64)
	OnComplete func(totalBytes int64)
	OnError    func(err error)
}

// Handle controls a running download. Pause and Resume report whether the
// transition applied; Stop is always safe to call.
type Handle interface {
	Pause() bool
	Resume() bool
	Stop()
}

// rateAndETA derives the average transfer rate and remaining-time estimate
// from elapsed wall time. Total may be unknown (-1), in which case the ETA
// is zero.
func rateAndETA(started time.Time, downloaded, total int64) (rate, eta float64) {
	elapsed := time.Since(started).Seconds()
	if elapsed <= 0 || downloaded <= 0 {
		return 0, 0
	}
	rate = float64(downloaded) / elapsed
	if total > downloaded && rate > 0 {
		eta = float64(total-downloaded) / rate
	}
	return rate, eta
}
