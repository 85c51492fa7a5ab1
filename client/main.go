package main

import (
	"context"
	"errors"
	"fmt"
	"go_lan_speed/client/comms"
	"go_lan_speed/client/params"
	"go_lan_speed/client/worker"
	"go_lan_speed/constants"
	"go_lan_speed/fileio"
	"go_lan_speed/logging"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/akamensky/argparse"
)

func main() {
	args := argparse.NewParser("client", constants.Title)

	port := args.Int("b", "broadcast-port", &argparse.Options{Required: false, Help: "Port to listen for offers on",
		Default: constants.DEFAULT_BROADCAST_PORT})
	dscp := args.Int("d", "dscp", &argparse.Options{Required: false, Help: "DSCP field for QoS",
		Default: constants.DEFAULT_DSCP})
	journal := args.String("j", "journal", &argparse.Options{Required: false, Help: "Append round summaries to lz4 compressed journal file"})
	rounds := args.Int("r", "rounds", &argparse.Options{Required: false, Help: "Number of rounds to run (0 runs until interrupted)",
		Default: 0})
	size := args.Int("s", "size", &argparse.Options{Required: false, Help: "File size in bytes. Prompts for all parameters when omitted",
		Default: 0})
	tcp := args.Int("t", "tcp", &argparse.Options{Required: false, Help: "Number of TCP connections",
		Default: 1})
	udp := args.Int("u", "udp", &argparse.Options{Required: false, Help: "Number of UDP connections",
		Default: 1})
	verbose := args.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})

	err := args.Parse(os.Args)

	if err != nil {
		fmt.Print(args.Usage(err))
		os.Exit(1)
	}

	if *size < 0 || *rounds < 0 {
		fmt.Print(args.Usage("size and rounds must not be negative"))
		os.Exit(1)
	}

	if *verbose {
		logging.EnableDebug()
	}

	var source params.Source = params.Prompt{}
	if *size > 0 {
		source = params.Fixed{FileSize: uint64(*size), UDPConnections: *udp, TCPConnections: *tcp}
	}

	p, err := source.Params()
	if err != nil {
		logging.LogError("%v", err)
		os.Exit(1)
	}

	debug.SetGCPercent(666)

	var records *fileio.Journal
	if *journal != "" {
		records, err = fileio.OpenJournal(*journal)
		if err != nil {
			logging.LogError("%v", err)
			os.Exit(1)
		}
		defer records.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := comms.DefaultOptions()
	opts.DSCP = *dscp
	discoveryAddr := comms.DiscoveryAddr(*port)

	for round := 1; *rounds == 0 || round <= *rounds; round++ {
		logging.LogInfo("Client started, listening for offer requests...")

		offer, err := comms.ListenForOffer(ctx, discoveryAddr)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logging.LogError("%v", err)
			os.Exit(1)
		}
		logging.LogInfo("Received offer from %s", offer)

		record := worker.RunRound(ctx, offer, p, opts)
		if ctx.Err() != nil {
			break
		}

		if records != nil {
			if err := records.Record(record); err != nil {
				logging.LogWarning("Could not record round: %v", err)
			}
		}
		logging.LogInfo("All transfers complete")
	}
}
