// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"context"
	"errors"

	"github.com/miekg/dns"
	"github.com/thediveo/lxkns/ops"
	"github.com/thediveo/lxkns/ops/relations"
	"github.com/thediveo/lxkns/species"
)

// ErrClosed is returned when exchanging messages over a closed ConnPool.
var ErrClosed = errors.New("DNS client connection pool closed")

// ConnPool is a (size-limited) pool of DNS client connections talking with the
// same DNS resolver address.
type ConnPool struct {
	netns  relations.Relation // network namespace to dial in, or nil.
	client *dns.Client
	addr   string
	free   chan *dns.Conn // nil elements are redialed on demand.
	closed chan struct{}
}

// ConnPoolOption can be passed to NewConnPool when creating new [ConnPool]
// objects.
type ConnPoolOption func(*ConnPool)

// NewConnPool returns a pool of the specified size of DNS client connections,
// with each connection talking to the same DNS resolver address.
//
// The passed context is used for creating (dialing) the initial DNS client
// connections only.
//
// To dial the DNS client connections in a network namespace different to that
// of the OS-level thread of the caller specify the [InNetworkNamespace] option
// and pass it a filesystem path that must reference a network namespace (such
// as "/proc/666/ns/net").
func NewConnPool(ctx context.Context, size int, dnsclnt *dns.Client, addr string, options ...ConnPoolOption) (*ConnPool, error) {
	if size < 1 {
		size = 1
	}
	p := &ConnPool{
		client: dnsclnt,
		addr:   addr,
		free:   make(chan *dns.Conn, size),
		closed: make(chan struct{}),
	}
	for _, opt := range options {
		opt(p)
	}
	conns := make([]*dns.Conn, 0, size)
	for i := 0; i < size; i++ {
		conn, err := p.dial(ctx)
		if err != nil {
			// Immediately release all connections created so far.
			for _, conn := range conns {
				conn.Close()
			}
			return nil, err
		}
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		p.free <- conn
	}
	return p, nil
}

// InNetworkNamespace optionally dials the connections of a ConnPool inside the
// network namespace referenced by the specified filesystem path. An empty
// path leaves the pool in the caller's network namespace.
func InNetworkNamespace(netnsref string) ConnPoolOption {
	return func(p *ConnPool) {
		if netnsref == "" {
			return
		}
		p.netns = ops.NewTypedNamespacePath(netnsref, species.CLONE_NEWNET)
	}
}

// dial a single new DNS client connection, switching into the requested
// network namespace if necessary. Once dialed, a socket stays in its network
// namespace, regardless of the namespace of the thread later using it.
func (p *ConnPool) dial(ctx context.Context) (*dns.Conn, error) {
	if p.netns == nil {
		return p.client.DialContext(ctx, p.addr)
	}
	var conn *dns.Conn
	res, err := ops.Execute(func() interface{} {
		var dialerr error
		conn, dialerr = p.client.DialContext(ctx, p.addr)
		return dialerr
	}, p.netns)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return nil, res.(error)
	}
	return conn, nil
}

// Exchange sends the DNS query message over the next free DNS client
// connection and returns the response. Exchange blocks until a connection
// becomes available, the context is done, or the pool is closed.
//
// When the exchange fails the connection used is discarded, as its state is
// unknown (think of a TCP stream with a late response still in flight), and a
// fresh connection gets dialed when next needed.
func (p *ConnPool) Exchange(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
	var conn *dns.Conn
	select {
	case conn = <-p.free:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, ErrClosed
	}
	if conn == nil {
		var err error
		if conn, err = p.dial(ctx); err != nil {
			p.free <- nil
			return nil, err
		}
	}
	resp, _, err := p.client.ExchangeWithConnContext(ctx, msg, conn)
	if err != nil {
		conn.Close()
		conn = nil
	}
	p.free <- conn
	return resp, err
}

// Close closes all idle DNS client connections. Callers must ensure that no
// exchanges are in flight anymore.
func (p *ConnPool) Close() {
	select {
	case <-p.closed:
		return
	default:
	}
	close(p.closed)
	for {
		select {
		case conn := <-p.free:
			if conn != nil {
				conn.Close()
			}
		default:
			return
		}
	}
}
