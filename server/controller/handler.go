package server

import (
	"go_lan_speed/fileio"
	"go_lan_speed/logging"
	"go_lan_speed/networking"
	"go_lan_speed/server/worker"
	"net"
	"time"
)

// handleTCP answers a single request with one bulk stream of filler, then closes
func (s *Server) handleTCP(conn *net.TCPConn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	// Set TCP_NODELAY to always immediately send.
	conn.SetNoDelay(true)
	if err := networking.SetConnDSCP(conn, s.config.DSCP); err != nil {
		logging.LogDebug("Could not set DSCP for %s: %v", remote, err)
	}

	// Read request. Apply time constraints.
	conn.SetReadDeadline(time.Now().Add(s.config.RequestTimeout))
	request, err := networking.ReadTCPRequest(conn)
	if err != nil {
		logging.LogWarning("Dropping TCP request from %s: %v", remote, err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	if request.FileSize == 0 {
		logging.LogWarning("Dropping TCP request from %s: file size must be positive", remote)
		return
	}

	begin := time.Now()
	written, err := fileio.NewFiller(request.FileSize).WriteTo(conn)
	if err != nil {
		logging.LogWarning("TCP transfer to %s aborted after %d of %d bytes: %v",
			remote, written, request.FileSize, err)
		return
	}
	logging.LogDebug("Sent %d bytes over TCP to %s in %v", written, remote, time.Since(begin))
}

// handleUDP streams numbered filler segments to the request's source address
func (s *Server) handleUDP(remote *net.UDPAddr, datagram []byte) {
	msg, err := networking.Decode(datagram)
	if err != nil {
		logging.LogWarning("Dropping UDP datagram from %s: %v", remote, err)
		return
	}
	request, ok := msg.(networking.Request)
	if !ok {
		logging.LogWarning("Dropping UDP datagram from %s: expected request, got type %d", remote, msg.Type())
		return
	}
	if request.FileSize == 0 {
		logging.LogWarning("Dropping UDP request from %s: file size must be positive", remote)
		return
	}

	conn, err := net.DialUDP("udp4", nil, remote)
	if err != nil {
		logging.LogWarning("Could not open UDP socket towards %s: %v", remote, err)
		return
	}
	defer conn.Close()

	if err := networking.SetConnDSCP(conn, s.config.DSCP); err != nil {
		logging.LogDebug("Could not set DSCP for %s: %v", remote, err)
	}

	plan := worker.NewSegmentPlan(request.FileSize, s.config.SegmentCapacity)
	begin := time.Now()
	sent, err := worker.StreamSegments(conn, plan, s.config.DropSegment)
	if err != nil {
		logging.LogWarning("UDP transfer to %s aborted after %d of %d segments: %v", remote, sent, plan.Total, err)
		return
	}
	logging.LogDebug("Sent %d/%d segments over UDP to %s in %v", sent, plan.Total, remote, time.Since(begin))
}
