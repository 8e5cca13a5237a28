package enet

import "strconv"

// Reason travels with an ENet disconnect as its data word.
type Reason uint32

const (
	None Reason = iota
	Shutdown
	Timeout
	Refused
)

func (r Reason) String() string {
	switch r {
	case None:
		return ""
	case Shutdown:
		return "host shut down"
	case Timeout:
		return "connection timed out"
	case Refused:
		return "connection refused"
	default:
		return strconv.Itoa(int(r))
	}
}
