package report

// Aggregator collects worker results in completion order.
// It is not safe for concurrent use; results reach it through channels.
type Aggregator struct {
	tcpSpeeds   []float64
	udpSpeeds   []float64
	udpReceived []float64
	tcpFailed   int
	udpFailed   int
}

// AddTCP records a TCP result and returns its speed. Failed results only count as failures.
func (a *Aggregator) AddTCP(r TCPResult) float64 {
	if r.Err != nil {
		a.tcpFailed++
		return 0
	}
	speed := Speed(r.BytesReceived, r.Duration)
	a.tcpSpeeds = append(a.tcpSpeeds, speed)
	return speed
}

// AddUDP records a UDP result and returns its speed and received percentage
func (a *Aggregator) AddUDP(r UDPResult) (float64, float64) {
	if r.Err != nil {
		a.udpFailed++
		return 0, 0
	}
	speed := Speed(r.BytesReceived, r.Duration)
	received := r.ReceivedPercent()
	a.udpSpeeds = append(a.udpSpeeds, speed)
	a.udpReceived = append(a.udpReceived, received)
	return speed, received
}

// TCPSummary summarizes TCP results. False means there is no data to summarize.
func (a *Aggregator) TCPSummary() (Summary, bool) {
	summary, ok := summarize(a.tcpSpeeds)
	summary.Failed = a.tcpFailed
	return summary, ok
}

// UDPSummary summarizes UDP results including average loss
func (a *Aggregator) UDPSummary() (Summary, bool) {
	summary, ok := summarize(a.udpSpeeds)
	summary.Failed = a.udpFailed
	if ok {
		summary.Loss = 100 - average(a.udpReceived)
	}
	return summary, ok
}

func summarize(speeds []float64) (Summary, bool) {
	if len(speeds) == 0 {
		return Summary{}, false
	}
	summary := Summary{
		Transfers: len(speeds),
		MinSpeed:  speeds[0],
		MaxSpeed:  speeds[0],
		AvgSpeed:  average(speeds),
	}
	for _, speed := range speeds[1:] {
		summary.MinSpeed = min(summary.MinSpeed, speed)
		summary.MaxSpeed = max(summary.MaxSpeed, speed)
	}
	return summary, true
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
