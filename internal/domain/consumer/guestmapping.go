package consumer

import "time"

// GuestMapping records that a host reports a guest. Seq increases with every
// new mapping, so among the hosts reporting a guest the highest Seq is the most
// recent reporter.
type GuestMapping struct {
	Seq        uint64
	OwnerID    string
	HostUUID   string
	GuestID    string
	ReportedAt time.Time
}
