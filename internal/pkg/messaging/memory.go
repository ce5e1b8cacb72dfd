package messaging

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
)

const memoryBuffer = 256

type memorySub struct {
	group string
	ch    chan Message
}

// Memory is an in-process Messaging implementation.
//
// Every ungrouped consumer of a source receives each message; consumers that
// share a group receive it round-robin. Publish blocks while a consumer buffer is full.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySub
	next   map[string]int
	closed bool
}

// NewMemory creates an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{
		subs: map[string][]*memorySub{},
		next: map[string]int{},
	}
}

// Close stops accepting messages. Running consumers return when their context ends.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Publish delivers msg to the current consumers of destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	targets, err := m.targets(destination)
	if err != nil {
		return err
	}

	msg.Source = destination
	msg.Headers = maps.Clone(msg.Headers)
	for _, sub := range targets {
		select {
		case sub.ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (m *Memory) targets(destination string) ([]*memorySub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	groups := map[string][]*memorySub{}
	var out []*memorySub
	for _, sub := range m.subs[destination] {
		if sub.group == "" {
			out = append(out, sub)
			continue
		}
		groups[sub.group] = append(groups[sub.group], sub)
	}

	for _, name := range slices.Sorted(maps.Keys(groups)) {
		members := groups[name]
		key := destination + "\x00" + name
		out = append(out, members[m.next[key]%len(members)])
		m.next[key]++
	}

	return out, nil
}

// Consume registers a consumer for source and blocks until ctx is done.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, source, handler); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{group: co.group, ch: make(chan Message, memoryBuffer)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-sub.ch:
					//nolint:errcheck // logged by dispatch
					_ = dispatch(ctx, DriverMemory, handler, msg)
				}
			}
		})
	}
	wg.Wait()

	m.mu.Lock()
	m.subs[source] = slices.DeleteFunc(m.subs[source], func(s *memorySub) bool { return s == sub })
	m.mu.Unlock()

	return ctx.Err()
}

// Subscribers reports how many consumers are registered for source.
func (m *Memory) Subscribers(source string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.subs[source])
}
