package networking

import (
	"net"

	"golang.org/x/net/ipv4"
)

// SetConnDSCP sets the DSCP field on a stream or connected datagram socket.
// NOTE: On Windows by default it will not apply the value.
func SetConnDSCP(conn net.Conn, dscp int) error {
	if dscp <= 0 {
		return nil
	}
	return ipv4.NewConn(conn).SetTOS(dscp << 2)
}

// SetPacketConnDSCP sets the DSCP field on an unconnected datagram socket
func SetPacketConnDSCP(conn net.PacketConn, dscp int) error {
	if dscp <= 0 {
		return nil
	}
	return ipv4.NewPacketConn(conn).SetTOS(dscp << 2)
}
