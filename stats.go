package pcanbus

import "fmt"

// Stats counts what a bus has done since it was opened.
type Stats struct {
	Received    uint64
	Sent        uint64
	BusWarnings uint64
	Errors      uint64
}

func (st Stats) String() string {
	return fmt.Sprintf("recv: %d sent: %d bus warnings: %d errors: %d", st.Received, st.Sent, st.BusWarnings, st.Errors)
}
