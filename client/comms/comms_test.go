package comms

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"go_lan_speed/fileio"
	"go_lan_speed/networking"
	server "go_lan_speed/server/controller"
)

func listenLoopback(c *qt.C) *Discoverer {
	discoverer, err := ListenForOffers("127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() {
		discoverer.Close()
	})
	return discoverer
}

func send(c *qt.C, to net.Addr, datagrams ...[]byte) {
	conn, err := net.Dial("udp4", to.String())
	c.Assert(err, qt.IsNil)
	defer conn.Close()
	for _, datagram := range datagrams {
		_, err := conn.Write(datagram)
		c.Assert(err, qt.IsNil)
	}
}

func encode(c *qt.C, msg networking.Message) []byte {
	data, err := networking.Encode(msg)
	c.Assert(err, qt.IsNil)
	return data
}

func TestDiscoverySkipsInvalidDatagrams(t *testing.T) {
	c := qt.New(t)
	discoverer := listenLoopback(c)

	badCookie := encode(c, networking.Offer{UDPPort: 1, TCPPort: 2})
	badCookie[0] ^= 0x01

	send(c, discoverer.LocalAddr(),
		[]byte("garbage"),
		badCookie,
		encode(c, networking.Request{FileSize: 10}),
		encode(c, networking.Offer{UDPPort: 0, TCPPort: 80}),
		encode(c, networking.Offer{UDPPort: 4000, TCPPort: 5000}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	offer, err := discoverer.Next(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(offer.ServerIP.Equal(net.IPv4(127, 0, 0, 1)), qt.IsTrue)
	c.Assert(offer.UDPPort, qt.Equals, uint16(4000))
	c.Assert(offer.TCPPort, qt.Equals, uint16(5000))
	c.Assert(offer.TCPAddr(), qt.Equals, "127.0.0.1:5000")
	c.Assert(offer.UDPAddr(), qt.Equals, "127.0.0.1:4000")
}

func TestDiscoveryAddr(t *testing.T) {
	c := qt.New(t)

	c.Assert(DiscoveryAddr(0), qt.Equals, ":12345")
	c.Assert(DiscoveryAddr(4000), qt.Equals, ":4000")
}

func TestDiscoveryCancel(t *testing.T) {
	c := qt.New(t)
	discoverer := listenLoopback(c)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := discoverer.Next(ctx)
	c.Assert(err, qt.Equals, context.DeadlineExceeded)

	// The discoverer stays usable after a cancelled wait.
	send(c, discoverer.LocalAddr(), encode(c, networking.Offer{UDPPort: 7, TCPPort: 8}))
	offer, err := discoverer.Next(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(offer.TCPPort, qt.Equals, uint16(8))
}

func TestDiscoverBroadcaster(t *testing.T) {
	c := qt.New(t)
	discoverer := listenLoopback(c)

	srv, err := server.NewServer(func() server.Config {
		config := server.DefaultConfig()
		config.ListenAddr = "127.0.0.1"
		config.BroadcastAddr = discoverer.LocalAddr().String()
		config.BroadcastInterval = 50 * time.Millisecond
		config.DSCP = 0
		return config
	}())
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()
	defer func() {
		cancel()
		c.Check(<-done, qt.IsNil)
	}()

	wait, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	offer, err := discoverer.Next(wait)
	c.Assert(err, qt.IsNil)
	c.Assert(offer.TCPPort, qt.Equals, srv.Offer().TCPPort)
	c.Assert(offer.UDPPort, qt.Equals, srv.Offer().UDPPort)
}

func startServer(c *qt.C) *server.Server {
	sink, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	c.Assert(err, qt.IsNil)

	config := server.DefaultConfig()
	config.ListenAddr = "127.0.0.1"
	config.BroadcastAddr = sink.LocalAddr().String()
	config.DSCP = 0

	srv, err := server.NewServer(config)
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()
	c.Cleanup(func() {
		cancel()
		c.Check(<-done, qt.IsNil)
		sink.Close()
	})
	return srv
}

func loopback(port uint16) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.DSCP = 0
	opts.IdleTimeout = 300 * time.Millisecond
	return opts
}

func TestTCPDownload(t *testing.T) {
	c := qt.New(t)
	srv := startServer(c)

	for _, size := range []uint64{1, 513, 1 << 20} {
		c.Run(strconv.FormatUint(size, 10), func(c *qt.C) {
			result := TCPDownload(context.Background(), 1, loopback(srv.Offer().TCPPort), size, testOptions())
			c.Assert(result.Err, qt.IsNil)
			c.Assert(result.Worker, qt.Equals, 1)
			c.Assert(result.BytesReceived, qt.Equals, size)
			c.Assert(result.Checksum, qt.Equals, fileio.FillerChecksumCRC32(size))
			c.Assert(result.Duration > 0, qt.IsTrue)
		})
	}
}

func TestTCPDownloadRefused(t *testing.T) {
	c := qt.New(t)

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	addr := listener.Addr().String()
	listener.Close()

	result := TCPDownload(context.Background(), 4, addr, 10, testOptions())
	c.Assert(result.Worker, qt.Equals, 4)
	c.Assert(result.Err, qt.ErrorMatches, "dial .*")
	c.Assert(result.BytesReceived, qt.Equals, uint64(0))
}

func TestUDPDownload(t *testing.T) {
	c := qt.New(t)
	srv := startServer(c)

	opts := testOptions()
	result := UDPDownload(context.Background(), 2, loopback(srv.Offer().UDPPort), 10000, opts)
	c.Assert(result.Err, qt.IsNil)
	c.Assert(result.SegmentsExpected, qt.Equals, uint64(20))
	c.Assert(result.SegmentsReceived, qt.Equals, uint64(20))
	c.Assert(result.BytesReceived, qt.Equals, uint64(10000))
	c.Assert(result.ReceivedPercent(), qt.Equals, 100.0)
}

func TestUDPDownloadCancel(t *testing.T) {
	c := qt.New(t)

	silent, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	c.Assert(err, qt.IsNil)
	defer silent.Close()

	opts := testOptions()
	opts.IdleTimeout = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	begin := time.Now()
	result := UDPDownload(ctx, 1, silent.LocalAddr().String(), 1024, opts)
	c.Assert(result.Err, qt.Equals, context.DeadlineExceeded)
	c.Assert(time.Since(begin) < 5*time.Second, qt.IsTrue)
}

func TestTCPDownloadShortResponse(t *testing.T) {
	c := qt.New(t)

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := networking.ReadTCPRequest(conn); err != nil {
			return
		}
		conn.Write([]byte("aaaa"))
	}()

	result := TCPDownload(context.Background(), 1, listener.Addr().String(), 1024, testOptions())
	c.Assert(result.Err, qt.IsNil)
	c.Assert(result.BytesReceived, qt.Equals, uint64(4))
	c.Assert(result.Checksum, qt.Equals, fileio.FillerChecksumCRC32(4))
}

func TestUDPDownloadSkipsInvalidDatagrams(t *testing.T) {
	c := qt.New(t)

	fake, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	c.Assert(err, qt.IsNil)
	defer fake.Close()

	go func() {
		buffer := make([]byte, 2048)
		n, client, err := fake.ReadFromUDP(buffer)
		if err != nil {
			return
		}
		if _, err := networking.Decode(buffer[:n]); err != nil {
			return
		}
		request, _ := networking.Encode(networking.Request{FileSize: 1})
		payload, _ := networking.Encode(networking.Payload{
			SegmentHeader: networking.SegmentHeader{TotalSegments: 5, SegmentIndex: 0},
			Data:          []byte("abc"),
		})
		for _, datagram := range [][]byte{[]byte("junk"), request, payload} {
			fake.WriteToUDP(datagram, client)
		}
	}()

	opts := testOptions()
	begin := time.Now()
	result := UDPDownload(context.Background(), 1, fake.LocalAddr().String(), 1024, opts)
	elapsed := time.Since(begin)

	c.Assert(result.Err, qt.IsNil)
	c.Assert(result.SegmentsReceived, qt.Equals, uint64(1))
	c.Assert(result.SegmentsExpected, qt.Equals, uint64(5))
	c.Assert(result.BytesReceived, qt.Equals, uint64(3))
	c.Assert(elapsed >= opts.IdleTimeout, qt.IsTrue)
	c.Assert(result.Duration < opts.IdleTimeout, qt.IsTrue)
}
