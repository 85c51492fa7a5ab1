package msgtype

const (
	OFFER   = 0x2 // Server advertisement of its transfer ports
	REQUEST = 0x3 // Client asks for a transfer of a given size
	PAYLOAD = 0x4 // One numbered segment of filler data
)
