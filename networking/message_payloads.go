package networking

import "go_lan_speed/networking/msgtype"

// Offer is the server advertisement of type 2
type Offer struct {
	UDPPort uint16 // Port of the UDP transfer socket
	TCPPort uint16 // Port of the TCP transfer listener
}

// Request of type 3 asks the server for FileSize bytes of filler
type Request struct {
	FileSize uint64
}

// SegmentHeader describes an individual segment of a UDP transfer
type SegmentHeader struct {
	TotalSegments uint64 // Same value for every segment of one request
	SegmentIndex  uint64 // Zero based, below TotalSegments
}

// Payload of type 4 carries one segment
type Payload struct {
	SegmentHeader
	// Followed by up to SEGMENT_CAPACITY bytes of filler. Empty, not nil, once decoded.
	Data []byte
}

func (Offer) Type() uint8   { return msgtype.OFFER }
func (Request) Type() uint8 { return msgtype.REQUEST }
func (Payload) Type() uint8 { return msgtype.PAYLOAD }

const (
	OfferSize         = 4  // 2 * uint16
	RequestSize       = 8  // uint64
	SegmentHeaderSize = 16 // 2 * uint64
)

// bodySize returns the fixed-field size of a message type
func bodySize(messageType uint8) (int, bool) {
	switch messageType {
	case msgtype.OFFER:
		return OfferSize, true
	case msgtype.REQUEST:
		return RequestSize, true
	case msgtype.PAYLOAD:
		return SegmentHeaderSize, true
	}
	return 0, false
}

// SegmentCount returns how many segments of given capacity are needed for fileSize bytes
func SegmentCount(fileSize uint64, capacity int) uint64 {
	if capacity <= 0 {
		return 0
	}
	c := uint64(capacity)
	count := fileSize / c
	if fileSize%c != 0 {
		count++
	}
	return count
}
