package networking

import (
	"bytes"
	"encoding/binary"
	"go_lan_speed/networking/msgtype"
)

// MagicCookie prefixes every message
const MagicCookie uint32 = 0xABCDDCBA

// HeaderSize is Cookie(4) + Type(1)
const HeaderSize = 5

// Header contains static message parts
type Header struct {
	Cookie uint32
	Type   uint8
	// Followed by the type's fixed fields.
}

// Message is one of Offer, Request or Payload
type Message interface {
	Type() uint8
}

// Encode serializes a message, header included
func Encode(msg Message) ([]byte, error) {
	var body interface{}
	var data []byte

	switch m := msg.(type) {
	case Offer:
		body = m
	case *Offer:
		body = *m
	case Request:
		body = m
	case *Request:
		body = *m
	case Payload:
		body, data = m.SegmentHeader, m.Data
	case *Payload:
		body, data = m.SegmentHeader, m.Data
	default:
		return nil, formatErrorf("unsupported message %T", msg)
	}

	size, _ := bodySize(msg.Type())
	buffer := bytes.NewBuffer(make([]byte, 0, HeaderSize+size+len(data)))
	if err := binary.Write(buffer, binary.BigEndian, Header{Cookie: MagicCookie, Type: msg.Type()}); err != nil {
		return nil, err
	}
	if err := binary.Write(buffer, binary.BigEndian, body); err != nil {
		return nil, formatErrorf("cannot pack type %d: %v", msg.Type(), err)
	}
	buffer.Write(data)

	return buffer.Bytes(), nil
}

// Decode deserializes a full message. Payload data is copied out of the input and is
// never nil. A payload whose index is not below its total is rejected.
func Decode(message []byte) (Message, error) {
	if len(message) < HeaderSize {
		return nil, formatErrorf("message too short: %d bytes (need at least %d)", len(message), HeaderSize)
	}

	reader := bytes.NewReader(message)
	var header Header
	// Cannot fail, length was checked above.
	binary.Read(reader, binary.BigEndian, &header)

	if header.Cookie != MagicCookie {
		return nil, formatErrorf("invalid magic cookie 0x%08X", header.Cookie)
	}

	size, known := bodySize(header.Type)
	if !known {
		return nil, formatErrorf("unsupported message type %d", header.Type)
	}

	body := len(message) - HeaderSize
	if body < size {
		return nil, formatErrorf("body of type %d too short: %d bytes (need %d)", header.Type, body, size)
	}

	switch header.Type {
	case msgtype.OFFER:
		var offer Offer
		binary.Read(reader, binary.BigEndian, &offer)
		return offer, nil
	case msgtype.REQUEST:
		var request Request
		binary.Read(reader, binary.BigEndian, &request)
		return request, nil
	default:
		var payload Payload
		binary.Read(reader, binary.BigEndian, &payload.SegmentHeader)
		if payload.SegmentIndex >= payload.TotalSegments {
			return nil, formatErrorf("segment index %d out of range (total %d)",
				payload.SegmentIndex, payload.TotalSegments)
		}
		trailing := message[HeaderSize+size:]
		payload.Data = make([]byte, len(trailing))
		copy(payload.Data, trailing)
		return payload, nil
	}
}
