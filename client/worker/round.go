package worker

import (
	"context"
	"go_lan_speed/client/comms"
	"go_lan_speed/client/params"
	"go_lan_speed/fileio"
	"go_lan_speed/logging"
	"go_lan_speed/report"
	"time"
)

// RunRound downloads from offer over all requested connections at once and summarizes the round.
// Both pools are joined before returning.
func RunRound(ctx context.Context, offer comms.Offer, p params.Params, opts comms.Options) report.Round {
	round := report.Round{
		Started:        time.Now(),
		Server:         offer.String(),
		FileSize:       p.FileSize,
		TCPConnections: p.TCPConnections,
		UDPConnections: p.UDPConnections,
	}

	// Start both pools before draining either.
	tcpResults := StartTCP(ctx, p.TCPConnections, offer, p.FileSize, opts)
	udpResults := StartUDP(ctx, p.UDPConnections, offer, p.FileSize, opts)

	var aggregator report.Aggregator
	var checksum uint32
	var checksumReady bool

	n := 0
	for result := range tcpResults {
		n++
		if result.Err != nil {
			aggregator.AddTCP(result)
			logging.LogError("TCP worker #%d failed: %v", result.Worker, result.Err)
			continue
		}
		speed := aggregator.AddTCP(result)
		logging.LogInfo("%s", report.DescribeTCP(n, result, speed))

		if result.BytesReceived != p.FileSize {
			logging.LogWarning("TCP worker #%d received %d of %d bytes", result.Worker, result.BytesReceived, p.FileSize)
			continue
		}
		if !checksumReady {
			checksum = fileio.FillerChecksumCRC32(p.FileSize)
			checksumReady = true
		}
		if result.Checksum != checksum {
			logging.LogWarning("TCP worker #%d received unexpected content (crc32 %08x, expected %08x)",
				result.Worker, result.Checksum, checksum)
		}
	}

	n = 0
	for result := range udpResults {
		n++
		if result.Err != nil {
			aggregator.AddUDP(result)
			logging.LogError("UDP worker #%d failed: %v", result.Worker, result.Err)
			continue
		}
		speed, received := aggregator.AddUDP(result)
		logging.LogInfo("%s", report.DescribeUDP(n, result, speed, received))
	}

	if p.TCPConnections > 0 {
		summary, ok := aggregator.TCPSummary()
		logging.LogSuccess("%s", report.DescribeSummary("TCP", summary, ok))
		round.TCP = &summary
	}
	if p.UDPConnections > 0 {
		summary, ok := aggregator.UDPSummary()
		logging.LogSuccess("%s", report.DescribeSummary("UDP", summary, ok))
		round.UDP = &summary
	}

	return round
}
