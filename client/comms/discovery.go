package comms

import (
	"context"
	"fmt"
	"go_lan_speed/constants"
	"go_lan_speed/logging"
	"go_lan_speed/networking"
	"net"
	"strconv"
	"time"
)

// Offer is a discovered server and its transfer ports
type Offer struct {
	ServerIP net.IP
	UDPPort  uint16
	TCPPort  uint16
}

// TCPAddr returns host:port of the server's TCP listener
func (o Offer) TCPAddr() string {
	return net.JoinHostPort(o.ServerIP.String(), strconv.Itoa(int(o.TCPPort)))
}

// UDPAddr returns host:port of the server's UDP socket
func (o Offer) UDPAddr() string {
	return net.JoinHostPort(o.ServerIP.String(), strconv.Itoa(int(o.UDPPort)))
}

func (o Offer) String() string {
	return fmt.Sprintf("%s (TCP %d, UDP %d)", o.ServerIP, o.TCPPort, o.UDPPort)
}

// DiscoveryAddr is the wildcard address on port, or on the well-known offer port when port is 0
func DiscoveryAddr(port int) string {
	if port == 0 {
		port = constants.DEFAULT_BROADCAST_PORT
	}
	return ":" + strconv.Itoa(port)
}

// Discoverer waits for server offers on the broadcast port
type Discoverer struct {
	conn *net.UDPConn
}

// ListenForOffers binds the offer port
func ListenForOffers(addr string) (*Discoverer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, &networking.TransportError{Op: "listen", Addr: addr, Err: err}
	}
	return &Discoverer{conn: conn}, nil
}

// LocalAddr returns the bound address
func (d *Discoverer) LocalAddr() net.Addr {
	return d.conn.LocalAddr()
}

// Close releases the offer port
func (d *Discoverer) Close() error {
	return d.conn.Close()
}

// Next blocks until a valid offer arrives or ctx is done.
// Malformed datagrams and other message types are skipped.
func (d *Discoverer) Next(ctx context.Context) (Offer, error) {
	d.conn.SetReadDeadline(time.Time{})
	// Unblock the pending read on cancellation.
	stop := context.AfterFunc(ctx, func() {
		d.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buffer := make([]byte, constants.DATAGRAM_BUFFER_SIZE)
	for {
		n, remote, err := d.conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return Offer{}, ctx.Err()
			}
			return Offer{}, &networking.TransportError{Op: "read", Addr: d.conn.LocalAddr().String(), Err: err}
		}

		msg, err := networking.Decode(buffer[:n])
		if err != nil {
			logging.LogWarning("Got invalid offer from %s - %v. Keep trying...", remote, err)
			continue
		}
		offer, ok := msg.(networking.Offer)
		if !ok {
			logging.LogDebug("Ignoring message of type %d from %s while waiting for an offer", msg.Type(), remote)
			continue
		}
		if offer.TCPPort == 0 || offer.UDPPort == 0 {
			logging.LogWarning("Ignoring offer from %s announcing port 0", remote)
			continue
		}

		return Offer{ServerIP: remote.IP, UDPPort: offer.UDPPort, TCPPort: offer.TCPPort}, nil
	}
}

// ListenForOffer binds addr, returns the first valid offer and releases the port
func ListenForOffer(ctx context.Context, addr string) (Offer, error) {
	discoverer, err := ListenForOffers(addr)
	if err != nil {
		return Offer{}, err
	}
	defer discoverer.Close()

	return discoverer.Next(ctx)
}
