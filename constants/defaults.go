package constants

import "time"

const Title = "LAN speed test - TCP/UDP throughput and packet loss"

const (
	DEFAULT_BROADCAST_PORT = 12345             // Well-known offer port
	DEFAULT_BROADCAST_ADDR = "255.255.255.255" // Limited broadcast
	BROADCAST_INTERVAL     = time.Second       // Offer retransmission interval
	DEFAULT_TCP_PORT       = 0                 // Let the kernel pick
	DEFAULT_UDP_PORT       = 0                 // Let the kernel pick
	SEGMENT_CAPACITY       = 512               // UDP payload bytes per segment
	UDP_IDLE_TIMEOUT       = time.Second       // Silence that ends a UDP stream
	REQUEST_READ_TIMEOUT   = 2 * time.Second   // Server side bound for reading a TCP request
	DATAGRAM_BUFFER_SIZE   = 2048              // Large enough for any message we send
	TCP_COPY_BUFFER_SIZE   = 64 * 1024         // Bulk filler writes and reads
	FILLER_BYTE            = 'a'               // Synthetic content
	DEFAULT_DSCP           = 0x0A              // QoS for high throughput
	DEFAULT_FILE_SIZE      = 1024 * 1024       // Used by the prompt as a hint
)
