package main

import (
	"context"
	"fmt"
	"go_lan_speed/constants"
	"go_lan_speed/logging"
	server "go_lan_speed/server/controller"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
)

func main() {
	args := argparse.NewParser("server", constants.Title)

	bcast := args.String("b", "broadcast", &argparse.Options{Required: false, Help: "Offer broadcast address",
		Default: constants.DEFAULT_BROADCAST_ADDR})
	dscp := args.Int("d", "dscp", &argparse.Options{Required: false, Help: "DSCP field for QoS",
		Default: constants.DEFAULT_DSCP})
	interval := args.Int("i", "interval", &argparse.Options{Required: false, Help: "Offer interval in milliseconds",
		Default: int(constants.BROADCAST_INTERVAL / time.Millisecond)})
	bind := args.String("l", "listen", &argparse.Options{Required: false, Help: "Listen on address",
		Default: "0.0.0.0"})
	tcpPort := args.Int("t", "tcp-port", &argparse.Options{Required: false, Help: "TCP listening port (0 picks any)",
		Default: constants.DEFAULT_TCP_PORT})
	udpPort := args.Int("u", "udp-port", &argparse.Options{Required: false, Help: "UDP listening port (0 picks any)",
		Default: constants.DEFAULT_UDP_PORT})
	verbose := args.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})

	err := args.Parse(os.Args)

	if err != nil {
		fmt.Print(args.Usage(err))
		os.Exit(1)
	}

	if *interval <= 0 {
		fmt.Println("Offer interval must be positive")
		os.Exit(1)
	}

	if *verbose {
		logging.EnableDebug()
	}

	debug.SetGCPercent(666)

	config := server.DefaultConfig()
	config.ListenAddr = *bind
	config.TCPPort = *tcpPort
	config.UDPPort = *udpPort
	config.BroadcastAddr = net.JoinHostPort(*bcast, strconv.Itoa(constants.DEFAULT_BROADCAST_PORT))
	config.BroadcastInterval = time.Duration(*interval) * time.Millisecond
	config.DSCP = *dscp

	srv, err := server.NewServer(config)
	if err != nil {
		logging.LogError("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logging.LogError("%v", err)
		os.Exit(1)
	}
}
