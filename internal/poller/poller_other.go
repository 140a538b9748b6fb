//go:build !linux

package poller

import "time"

type Poller struct{}

func New(int) (*Poller, error) {
	return nil, ErrUnsupported
}

func (*Poller) Register(int, uint32, Interest, bool) error   { return ErrUnsupported }
func (*Poller) Reregister(int, uint32, Interest, bool) error { return ErrUnsupported }
func (*Poller) Deregister(int) error                         { return ErrUnsupported }
func (*Poller) Wake() error                                  { return ErrUnsupported }
func (*Poller) Close() error                                 { return ErrUnsupported }

func (*Poller) Wait(events []Event, _ time.Duration) ([]Event, error) {
	return events, ErrUnsupported
}
