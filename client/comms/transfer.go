package comms

import (
	"context"
	"go_lan_speed/constants"
	"go_lan_speed/fileio"
	"go_lan_speed/logging"
	"go_lan_speed/networking"
	"go_lan_speed/report"
	"io"
	"math"
	"net"
	"time"
)

// Options tune client transfers
type Options struct {
	DSCP            int           // 0 leaves the TOS byte alone
	IdleTimeout     time.Duration // UDP silence ending a stream
	SegmentCapacity int           // Used to expect segments before the first one arrives
	ConnectTimeout  time.Duration
}

// DefaultOptions returns protocol defaults
func DefaultOptions() Options {
	return Options{
		DSCP:            constants.DEFAULT_DSCP,
		IdleTimeout:     constants.UDP_IDLE_TIMEOUT,
		SegmentCapacity: constants.SEGMENT_CAPACITY,
		ConnectTimeout:  5 * time.Second,
	}
}

// TCPDownload requests size bytes over a new TCP connection and times the response.
// The response is read until size bytes arrived or the server closed the connection;
// a short response is reported as is, not as an error.
func TCPDownload(ctx context.Context, worker int, addr string, size uint64, opts Options) report.TCPResult {
	result := report.TCPResult{Worker: worker}

	dialer := net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp4", addr)
	if err != nil {
		result.Err = &networking.TransportError{Op: "dial", Addr: addr, Err: err}
		return result
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	// Set TCP_NODELAY to always immediately send.
	conn.(*net.TCPConn).SetNoDelay(true)
	if err := networking.SetConnDSCP(conn, opts.DSCP); err != nil {
		logging.LogDebug("Could not set DSCP on TCP worker #%d: %v", worker, err)
	}

	request, err := networking.EncodeTCPRequest(size)
	if err != nil {
		result.Err = err
		return result
	}
	if _, err := conn.Write(request); err != nil {
		result.Err = &networking.TransportError{Op: "write", Addr: addr, Err: err}
		return result
	}

	limit := int64(size)
	if limit < 0 {
		limit = math.MaxInt64
	}

	begin := time.Now()
	var received fileio.ChecksumWriter
	_, err = io.CopyBuffer(&received, io.LimitReader(conn, limit), make([]byte, constants.TCP_COPY_BUFFER_SIZE))
	result.Duration = time.Since(begin)
	result.BytesReceived = received.Written()
	result.Checksum = received.Sum32()

	if err != nil {
		if ctx.Err() != nil {
			result.Err = ctx.Err()
		} else {
			result.Err = &networking.TransportError{Op: "read", Addr: addr, Err: err}
		}
	}
	return result
}

// UDPDownload requests size bytes over UDP and counts segments until the stream goes idle.
// The final idle wait is not part of the reported duration.
func UDPDownload(ctx context.Context, worker int, addr string, size uint64, opts Options) report.UDPResult {
	result := report.UDPResult{
		Worker:           worker,
		SegmentsExpected: networking.SegmentCount(size, opts.SegmentCapacity),
	}

	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		result.Err = err
		return result
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		result.Err = &networking.TransportError{Op: "listen", Err: err}
		return result
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	if err := networking.SetPacketConnDSCP(conn, opts.DSCP); err != nil {
		logging.LogDebug("Could not set DSCP on UDP worker #%d: %v", worker, err)
	}

	request, err := networking.Encode(networking.Request{FileSize: size})
	if err != nil {
		result.Err = err
		return result
	}
	if _, err := conn.WriteToUDP(request, raddr); err != nil {
		result.Err = &networking.TransportError{Op: "write", Addr: addr, Err: err}
		return result
	}

	begin := time.Now()
	buffer := make([]byte, constants.DATAGRAM_BUFFER_SIZE)
	for {
		conn.SetReadDeadline(time.Now().Add(opts.IdleTimeout))
		n, _, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if networking.IsTimeout(err) {
				break
			}
			result.Duration = time.Since(begin)
			if ctx.Err() != nil {
				result.Err = ctx.Err()
			} else {
				result.Err = &networking.TransportError{Op: "read", Addr: addr, Err: err}
			}
			return result
		}

		msg, err := networking.Decode(buffer[:n])
		if err != nil {
			logging.LogWarning("Corrupted message on UDP worker #%d: %v", worker, err)
			continue
		}
		payload, ok := msg.(networking.Payload)
		if !ok {
			logging.LogWarning("Unexpected message of type %d on UDP worker #%d", msg.Type(), worker)
			continue
		}

		result.SegmentsReceived++
		result.BytesReceived += uint64(len(payload.Data))
		result.SegmentsExpected = payload.TotalSegments
	}

	result.Duration = max(time.Since(begin)-opts.IdleTimeout, 0)
	return result
}
