package server

import (
	"context"
	"go_lan_speed/logging"
	"go_lan_speed/networking"
	"net"
	"sync/atomic"
	"time"
)

// Broadcaster periodically advertises an offer. There is no acknowledgement and no backoff;
// a client that misses one offer waits for the next.
type Broadcaster struct {
	addr     string
	interval time.Duration
	dscp     int
	sent     atomic.Uint64
}

// NewBroadcaster prepares a broadcaster sending to addr every interval
func NewBroadcaster(addr string, interval time.Duration, dscp int) *Broadcaster {
	return &Broadcaster{addr: addr, interval: interval, dscp: dscp}
}

// Sent returns number of offers sent so far
func (b *Broadcaster) Sent() uint64 {
	return b.sent.Load()
}

// Run sends the offer until ctx is cancelled. The message is built once.
func (b *Broadcaster) Run(ctx context.Context, offer networking.Offer) error {
	message, err := networking.Encode(offer)
	if err != nil {
		return err
	}

	raddr, err := net.ResolveUDPAddr("udp4", b.addr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return &networking.TransportError{Op: "dial", Addr: b.addr, Err: err}
	}
	defer conn.Close()

	if err := networking.SetConnDSCP(conn, b.dscp); err != nil {
		logging.LogDebug("Could not set DSCP for offers: %v", err)
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	logging.LogInfo("Broadcasting offer (UDP %d, TCP %d) to %s every %v", offer.UDPPort, offer.TCPPort, b.addr, b.interval)
	for {
		if _, err := conn.Write(message); err != nil {
			logging.LogWarning("Error sending offer: %v", err)
		} else {
			b.sent.Add(1)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
