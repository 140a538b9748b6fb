//go:build linux

package poller

import (
	"encoding/binary"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Poller is a thin wrapper over epoll. Registered descriptors are identified by tokens,
// stored right in the event data. It is safe to call Wake from any goroutine, all the other
// methods must be called from the goroutine owning the poller.
type Poller struct {
	epfd    int
	wakefd  int
	events  []unix.EpollEvent
	scratch [8]byte
}

// New creates a poller fetching at most maxEvents events per Wait.
func New(maxEvents int) (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, os.NewSyscallError("eventfd", err)
	}

	p := &Poller{
		epfd:   epfd,
		wakefd: wakefd,
		events: make([]unix.EpollEvent, maxEvents),
	}

	if err = p.Register(wakefd, WakerToken, Readable, false); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, err
	}

	return p, nil
}

// Register starts watching the descriptor. Oneshot registrations are disarmed after the
// first delivered event and must be re-armed via Reregister.
func (p *Poller) Register(fd int, token uint32, interest Interest, oneshot bool) error {
	return p.ctl(unix.EPOLL_CTL_ADD, fd, token, interest, oneshot)
}

// Reregister replaces the interest and the token of an already registered descriptor.
func (p *Poller) Reregister(fd int, token uint32, interest Interest, oneshot bool) error {
	return p.ctl(unix.EPOLL_CTL_MOD, fd, token, interest, oneshot)
}

// Deregister stops watching the descriptor.
func (p *Poller) Deregister(fd int) error {
	return os.NewSyscallError("epoll_ctl", unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil))
}

func (p *Poller) ctl(op, fd int, token uint32, interest Interest, oneshot bool) error {
	var events uint32
	if interest&Readable != 0 {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}

	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}

	if oneshot {
		events |= unix.EPOLLONESHOT
	}

	event := unix.EpollEvent{
		Events: events,
		Fd:     int32(token),
	}

	return os.NewSyscallError("epoll_ctl", unix.EpollCtl(p.epfd, op, fd, &event))
}

// Wait blocks until at least one event is ready or the timeout expires, and appends the
// events to the passed slice. Negative timeout means waiting infinitely. Being woken up
// via Wake or interrupted by a signal results in returning no events.
func (p *Poller) Wait(events []Event, timeout time.Duration) ([]Event, error) {
	n, err := unix.EpollWait(p.epfd, p.events, milliseconds(timeout))
	switch err {
	case nil:
	case unix.EINTR:
		return events, nil
	default:
		return events, os.NewSyscallError("epoll_wait", err)
	}

	for _, event := range p.events[:n] {
		token := uint32(event.Fd)
		if token == WakerToken {
			p.drainWaker()
			continue
		}

		failed := event.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0
		events = append(events, Event{
			Token:    token,
			Readable: failed || event.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0,
			Writable: failed || event.Events&unix.EPOLLOUT != 0,
		})
	}

	return events, nil
}

// Wake interrupts the ongoing or the next Wait call.
func (p *Poller) Wake() error {
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	_, err := unix.Write(p.wakefd, one[:])
	if err == unix.EAGAIN {
		// the counter is saturated, so the poller is going to be woken up anyway
		return nil
	}

	return os.NewSyscallError("write", err)
}

func (p *Poller) drainWaker() {
	_, _ = unix.Read(p.wakefd, p.scratch[:])
}

func (p *Poller) Close() error {
	werr := unix.Close(p.wakefd)
	if err := unix.Close(p.epfd); err != nil {
		return os.NewSyscallError("close", err)
	}

	return os.NewSyscallError("close", werr)
}

func milliseconds(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}

	// rounding up, so the timeout is never shorter than requested
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}
