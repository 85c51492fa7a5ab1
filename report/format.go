package report

import "fmt"

var speedUnits = []string{"bits/s", "Kib/s", "Mib/s", "Gib/s", "Tib/s", "Pib/s"}

// HumanizeSpeed formats bits per second in base 1024 units
func HumanizeSpeed(bitsPerSecond float64) string {
	unit := 0
	for bitsPerSecond >= 1024 && unit < len(speedUnits)-1 {
		bitsPerSecond /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", bitsPerSecond, speedUnits[unit])
}

// DescribeTCP returns the per-transfer line of a TCP worker
func DescribeTCP(n int, r TCPResult, speed float64) string {
	return fmt.Sprintf("TCP transfer #%d finished, total time: %.3f seconds, total speed: %s",
		n, r.Duration.Seconds(), HumanizeSpeed(speed))
}

// DescribeUDP returns the per-transfer line of a UDP worker
func DescribeUDP(n int, r UDPResult, speed, received float64) string {
	return fmt.Sprintf("UDP transfer #%d finished, total time: %.3f seconds, total speed: %s, "+
		"percentage of packets received: %.2f%% (%d/%d)",
		n, r.Duration.Seconds(), HumanizeSpeed(speed), received, r.SegmentsReceived, r.SegmentsExpected)
}

// DescribeSummary returns the round summary of one protocol
func DescribeSummary(protocol string, s Summary, ok bool) string {
	if !ok {
		return fmt.Sprintf("%s transfers summary: no data (%d failed)", protocol, s.Failed)
	}
	text := fmt.Sprintf("%s transfers summary: %d completed, %d failed | max %s | min %s | avg %s",
		protocol, s.Transfers, s.Failed,
		HumanizeSpeed(s.MaxSpeed), HumanizeSpeed(s.MinSpeed), HumanizeSpeed(s.AvgSpeed))
	if protocol == "UDP" {
		text += fmt.Sprintf(" | avg packet loss %.2f%%", s.Loss)
	}
	return text
}
