package worker

import (
	"go_lan_speed/fileio"
	"go_lan_speed/networking"
	"io"
)

// Segment describes one datagram of a UDP transfer
type Segment struct {
	Index  uint64
	Length int
}

// SegmentPlan splits a transfer of FileSize bytes into segments of at most Capacity bytes
type SegmentPlan struct {
	FileSize uint64
	Capacity int
	Total    uint64
}

// NewSegmentPlan plans a transfer
func NewSegmentPlan(fileSize uint64, capacity int) SegmentPlan {
	return SegmentPlan{
		FileSize: fileSize,
		Capacity: capacity,
		Total:    networking.SegmentCount(fileSize, capacity),
	}
}

// Segment returns the segment of given index. Index must be below Total.
func (p SegmentPlan) Segment(index uint64) Segment {
	remaining := p.FileSize - index*uint64(p.Capacity)
	length := p.Capacity
	if remaining < uint64(length) {
		length = int(remaining)
	}
	return Segment{Index: index, Length: length}
}

// Payload builds the message carrying segment of given index
func (p SegmentPlan) Payload(index uint64) networking.Payload {
	segment := p.Segment(index)
	return networking.Payload{
		SegmentHeader: networking.SegmentHeader{
			TotalSegments: p.Total,
			SegmentIndex:  segment.Index,
		},
		Data: fileio.Segment(segment.Length),
	}
}

// StreamSegments writes every planned segment as one message per Write call.
// Segments for which skip returns true are left out. There is no pacing or retransmission;
// the first write error aborts the remaining segments.
func StreamSegments(w io.Writer, plan SegmentPlan, skip func(index uint64) bool) (uint64, error) {
	var sent uint64
	for index := uint64(0); index < plan.Total; index++ {
		if skip != nil && skip(index) {
			continue
		}
		out, err := networking.Encode(plan.Payload(index))
		if err != nil {
			return sent, err
		}
		if _, err := w.Write(out); err != nil {
			return sent, &networking.TransportError{Op: "write", Err: err}
		}
		sent++
	}
	return sent, nil
}
