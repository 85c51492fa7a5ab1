// Package report turns worker results into speed and loss summaries.
package report

import "time"

// TCPResult is the outcome of one TCP transfer
type TCPResult struct {
	Worker        int
	Duration      time.Duration
	BytesReceived uint64
	Checksum      uint32 // CRC32 of the received stream
	Err           error
}

// UDPResult is the outcome of one UDP transfer
type UDPResult struct {
	Worker           int
	Duration         time.Duration // Idle timeout already excluded
	BytesReceived    uint64
	SegmentsReceived uint64
	SegmentsExpected uint64
	Err              error
}

// ReceivedPercent returns the share of expected segments that arrived.
// Nothing expected counts as nothing received.
func (r UDPResult) ReceivedPercent() float64 {
	if r.SegmentsExpected == 0 {
		return 0
	}
	return float64(r.SegmentsReceived) * 100 / float64(r.SegmentsExpected)
}

// Speed returns bits per second, or 0 for a non-positive duration
func Speed(bytes uint64, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(bytes) * 8 / duration.Seconds()
}

// Summary describes all successful transfers of one protocol in a round
type Summary struct {
	Transfers int     `json:"transfers"`
	Failed    int     `json:"failed"`
	MinSpeed  float64 `json:"min_bps"`
	MaxSpeed  float64 `json:"max_bps"`
	AvgSpeed  float64 `json:"avg_bps"`
	Loss      float64 `json:"loss_percent"` // UDP only
}

// Round is the journal record of one discovery-to-summary cycle
type Round struct {
	Started        time.Time `json:"started"`
	Server         string    `json:"server"`
	FileSize       uint64    `json:"file_size"`
	TCPConnections int       `json:"tcp_connections"`
	UDPConnections int       `json:"udp_connections"`
	TCP            *Summary  `json:"tcp,omitempty"`
	UDP            *Summary  `json:"udp,omitempty"`
}
