package worker

import (
	"context"
	"net"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"go_lan_speed/client/comms"
	"go_lan_speed/client/params"
	server "go_lan_speed/server/controller"
)

// startServer runs a loopback server whose offers go to a throwaway socket
func startServer(c *qt.C, configure func(*server.Config)) comms.Offer {
	sink, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	c.Assert(err, qt.IsNil)

	config := server.DefaultConfig()
	config.ListenAddr = "127.0.0.1"
	config.BroadcastAddr = sink.LocalAddr().String()
	config.BroadcastInterval = time.Second
	config.DSCP = 0
	if configure != nil {
		configure(&config)
	}

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

	return comms.Offer{
		ServerIP: net.IPv4(127, 0, 0, 1),
		TCPPort:  srv.Offer().TCPPort,
		UDPPort:  srv.Offer().UDPPort,
	}
}

func testOptions() comms.Options {
	opts := comms.DefaultOptions()
	opts.DSCP = 0
	opts.IdleTimeout = 300 * time.Millisecond
	return opts
}

// closedPort returns a loopback port nothing listens on
func closedPort(c *qt.C) uint16 {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return uint16(port)
}

func TestStartWorkersCompletionOrder(t *testing.T) {
	c := qt.New(t)

	delays := map[int]time.Duration{1: 300 * time.Millisecond, 2: 150 * time.Millisecond, 3: 0}
	results := StartWorkers(context.Background(), 3, func(ctx context.Context, worker int) int {
		time.Sleep(delays[worker])
		return worker
	})

	var order []int
	for worker := range results {
		order = append(order, worker)
	}
	c.Assert(order, qt.DeepEquals, []int{3, 2, 1})
}

func TestStartWorkersNone(t *testing.T) {
	c := qt.New(t)

	results := StartWorkers(context.Background(), 0, func(ctx context.Context, worker int) int {
		c.Fatalf("unexpected worker %d", worker)
		return 0
	})

	_, open := <-results
	c.Assert(open, qt.IsFalse)
}

func TestRoundTCP(t *testing.T) {
	c := qt.New(t)
	offer := startServer(c, nil)

	round := RunRound(context.Background(), offer,
		params.Params{FileSize: 1024, TCPConnections: 2}, testOptions())

	c.Assert(round.UDP, qt.IsNil)
	c.Assert(round.TCP, qt.Not(qt.IsNil))
	c.Assert(round.TCP.Transfers, qt.Equals, 2)
	c.Assert(round.TCP.Failed, qt.Equals, 0)
	c.Assert(round.TCP.MinSpeed > 0, qt.IsTrue)
	c.Assert(round.TCP.MaxSpeed >= round.TCP.MinSpeed, qt.IsTrue)
	c.Assert(round.FileSize, qt.Equals, uint64(1024))
}

func TestRoundUDPLoss(t *testing.T) {
	c := qt.New(t)
	offer := startServer(c, func(config *server.Config) {
		config.DropSegment = func(index uint64) bool {
			return index == 2
		}
	})

	round := RunRound(context.Background(), offer,
		params.Params{FileSize: 5000, UDPConnections: 1}, testOptions())

	c.Assert(round.TCP, qt.IsNil)
	c.Assert(round.UDP, qt.Not(qt.IsNil))
	c.Assert(round.UDP.Transfers, qt.Equals, 1)
	c.Assert(round.UDP.Loss, qt.Equals, 10.0)
}

func TestRoundFailedWorkerExcluded(t *testing.T) {
	c := qt.New(t)
	offer := startServer(c, nil)
	offer.TCPPort = closedPort(c)

	round := RunRound(context.Background(), offer,
		params.Params{FileSize: 1024, TCPConnections: 3}, testOptions())

	c.Assert(round.TCP.Transfers, qt.Equals, 0)
	c.Assert(round.TCP.Failed, qt.Equals, 3)
}

func TestUDPWorkersAgainstSilentPort(t *testing.T) {
	c := qt.New(t)

	silent, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	c.Assert(err, qt.IsNil)
	defer silent.Close()

	offer := comms.Offer{
		ServerIP: net.IPv4(127, 0, 0, 1),
		UDPPort:  uint16(silent.LocalAddr().(*net.UDPAddr).Port),
	}

	var received int
	for result := range StartUDP(context.Background(), 2, offer, 2048, testOptions()) {
		received++
		c.Assert(result.Err, qt.IsNil)
		c.Assert(result.SegmentsReceived, qt.Equals, uint64(0))
		c.Assert(result.SegmentsExpected, qt.Equals, uint64(4))
		c.Assert(result.ReceivedPercent(), qt.Equals, 0.0)
	}
	c.Assert(received, qt.Equals, 2)
}
