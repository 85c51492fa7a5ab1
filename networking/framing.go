package networking

import (
	"errors"
	"io"
)

// Terminator follows every request sent over TCP
const Terminator byte = '\n'

// TCPRequestSize is the full framed request length on a stream
const TCPRequestSize = HeaderSize + RequestSize + 1

// EncodeTCPRequest encodes a request followed by the stream terminator
func EncodeTCPRequest(fileSize uint64) ([]byte, error) {
	msg, err := Encode(Request{FileSize: fileSize})
	if err != nil {
		return nil, err
	}
	return append(msg, Terminator), nil
}

// ReadTCPRequest reads one framed request from a stream.
// The frame length is fixed so a file size containing a newline byte is still read whole.
func ReadTCPRequest(r io.Reader) (Request, error) {
	frame := make([]byte, TCPRequestSize)

	n, err := io.ReadFull(r, frame)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Request{}, formatErrorf("incomplete request: %d of %d bytes", n, TCPRequestSize)
		}
		return Request{}, &TransportError{Op: "read", Err: err}
	}

	if frame[len(frame)-1] != Terminator {
		return Request{}, formatErrorf("request not terminated with '\\n'")
	}

	msg, err := Decode(frame[:len(frame)-1])
	if err != nil {
		return Request{}, err
	}
	request, ok := msg.(Request)
	if !ok {
		return Request{}, formatErrorf("expected request, got type %d", msg.Type())
	}
	return request, nil
}
