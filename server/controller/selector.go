package server

import (
	"context"
	"errors"
	"fmt"
	"go_lan_speed/constants"
	"go_lan_speed/logging"
	"go_lan_speed/networking"
	"net"
	"strconv"
	"sync"
	"time"
)

// Config describes sockets and behaviour of a speed test server
type Config struct {
	ListenAddr        string        // Address both transfer sockets bind to
	TCPPort           int           // 0 picks an ephemeral port
	UDPPort           int           // 0 picks an ephemeral port
	BroadcastAddr     string        // host:port receiving offers
	BroadcastInterval time.Duration // Offer retransmission interval
	SegmentCapacity   int           // UDP payload bytes per segment
	RequestTimeout    time.Duration // Bound for reading a TCP request
	DSCP              int           // 0 leaves the TOS byte alone

	// DropSegment, when set, leaves out UDP segments for which it returns true.
	// Used to exercise loss accounting.
	DropSegment func(index uint64) bool
}

// DefaultConfig returns configuration matching protocol defaults
func DefaultConfig() Config {
	return Config{
		ListenAddr:        "0.0.0.0",
		TCPPort:           constants.DEFAULT_TCP_PORT,
		UDPPort:           constants.DEFAULT_UDP_PORT,
		BroadcastAddr:     net.JoinHostPort(constants.DEFAULT_BROADCAST_ADDR, strconv.Itoa(constants.DEFAULT_BROADCAST_PORT)),
		BroadcastInterval: constants.BROADCAST_INTERVAL,
		SegmentCapacity:   constants.SEGMENT_CAPACITY,
		RequestTimeout:    constants.REQUEST_READ_TIMEOUT,
		DSCP:              constants.DEFAULT_DSCP,
	}
}

// Server owns the TCP listener and UDP socket for its whole lifetime
type Server struct {
	config Config
	tcp    *net.TCPListener
	udp    *net.UDPConn
	offer  networking.Offer
	loops  sync.WaitGroup
}

// NewServer binds both transfer sockets so the offer can announce their real ports
func NewServer(config Config) (*Server, error) {
	if config.SegmentCapacity <= 0 {
		return nil, fmt.Errorf("invalid segment capacity %d", config.SegmentCapacity)
	}

	tcpAddr, err := net.ResolveTCPAddr("tcp4", net.JoinHostPort(config.ListenAddr, strconv.Itoa(config.TCPPort)))
	if err != nil {
		return nil, err
	}
	udpAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(config.ListenAddr, strconv.Itoa(config.UDPPort)))
	if err != nil {
		return nil, err
	}

	tcp, err := net.ListenTCP("tcp4", tcpAddr)
	if err != nil {
		return nil, &networking.TransportError{Op: "listen", Addr: tcpAddr.String(), Err: err}
	}
	udp, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		tcp.Close()
		return nil, &networking.TransportError{Op: "listen", Addr: udpAddr.String(), Err: err}
	}

	return &Server{
		config: config,
		tcp:    tcp,
		udp:    udp,
		offer: networking.Offer{
			UDPPort: uint16(udp.LocalAddr().(*net.UDPAddr).Port),
			TCPPort: uint16(tcp.Addr().(*net.TCPAddr).Port),
		},
	}, nil
}

// Offer returns the advertisement broadcast by this server
func (s *Server) Offer() networking.Offer {
	return s.offer
}

// Run broadcasts offers and serves transfers until ctx is cancelled.
// Handlers still streaming at that point finish on their own.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logging.LogInfo("Server started, listening on TCP %s and UDP %s", s.tcp.Addr(), s.udp.LocalAddr())

	s.loops.Add(2)
	go s.acceptTCP(ctx)
	go s.receiveUDP(ctx)

	broadcaster := NewBroadcaster(s.config.BroadcastAddr, s.config.BroadcastInterval, s.config.DSCP)
	err := broadcaster.Run(ctx, s.offer)
	// Broadcaster only returns early on a setup failure.
	cancel()

	s.tcp.Close()
	s.udp.Close()
	s.loops.Wait()

	logging.LogInfo("Server stopped")
	return err
}

// acceptTCP spawns one handler per accepted connection
func (s *Server) acceptTCP(ctx context.Context) {
	defer s.loops.Done()

	for {
		conn, err := s.tcp.AcceptTCP()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logging.LogWarning("Failed to establish incoming connection: %v", err)
			continue
		}

		logging.LogDebug("New TCP connection from %s", conn.RemoteAddr())
		go s.handleTCP(conn)
	}
}

// receiveUDP spawns one handler per received datagram
func (s *Server) receiveUDP(ctx context.Context) {
	defer s.loops.Done()

	buffer := make([]byte, constants.DATAGRAM_BUFFER_SIZE)
	for {
		n, remote, err := s.udp.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logging.LogWarning("Could not read UDP request: %v", err)
			continue
		}

		logging.LogDebug("New UDP request from %s", remote)
		datagram := make([]byte, n)
		copy(datagram, buffer[:n])
		go s.handleUDP(remote, datagram)
	}
}
