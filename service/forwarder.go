package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"shardctl/domain"
	"shardctl/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const maxDatagramSize = 64 * 1024

// Forwarder is the user-space packet path: it receives client datagrams on the service address,
// steers each one to the instance its key maps to and relays the replies back to the client.
// Each client gets one upstream socket per instance generation, so a replaced instance never
// receives traffic meant for its predecessor even when it reuses the address.
type Forwarder struct {
	listenAddr string
	classifier *SoftwareClassifier
	idle       time.Duration
	logger     log.Logger

	conn     *net.UDPConn
	resolve  func(network, address string) (*net.UDPAddr, error)
	mu       sync.Mutex
	sessions map[sessionKey]*session
	wg       sync.WaitGroup
}

type sessionKey struct {
	client     string
	address    string
	generation uint64
}

type session struct {
	upstream *net.UDPConn
	client   *net.UDPAddr
}

// NewForwarder creates a Forwarder. Panics on an empty listen address or nil classifier or logger.
func NewForwarder(listenAddr string, classifier *SoftwareClassifier, idle time.Duration, logger log.Logger) *Forwarder {
	if idle <= 0 {
		idle = 30 * time.Second
	}
	return &Forwarder{
		listenAddr: helpers.StrPanic(listenAddr, "service.forwarder.go: listen address is required"),
		classifier: helpers.NilPanic(classifier, "service.forwarder.go: classifier is required"),
		idle:       idle,
		resolve:    net.ResolveUDPAddr,
		logger:     log.With(helpers.NilPanic(logger, "service.forwarder.go: logger is required"), "component", "forwarder", "listen", listenAddr),
		sessions:   make(map[sessionKey]*session),
	}
}

// Listen binds the service address.
func (f *Forwarder) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", f.listenAddr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", f.listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", f.listenAddr, err)
	}
	f.conn = conn
	return nil
}

// Addr is the bound address. Valid after Listen.
func (f *Forwarder) Addr() net.Addr {
	return f.conn.LocalAddr()
}

// Serve forwards datagrams until ctx is done. Listen must have been called.
func (f *Forwarder) Serve(ctx context.Context) error {
	if f.conn == nil {
		return errors.New("forwarder is not listening")
	}
	stop := context.AfterFunc(ctx, func() { _ = f.conn.Close() })
	defer stop()
	defer f.closeSessions()

	level.Info(f.logger).Log("msg", "forwarder started")
	buf := make([]byte, maxDatagramSize)
	for {
		n, client, err := f.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				level.Info(f.logger).Log("msg", "forwarder stopped")
				return nil
			}
			level.Warn(f.logger).Log("msg", "read datagram", "err", err)
			continue
		}
		f.forward(buf[:n], client)
	}
}

func (f *Forwarder) forward(packet []byte, client *net.UDPAddr) {
	inst, ok := f.classifier.Select(packet)
	if !ok {
		level.Debug(f.logger).Log("msg", "datagram dropped, no routable instance", "client", client, "size", len(packet))
		return
	}
	s, err := f.session(client, inst)
	if err != nil {
		level.Warn(f.logger).Log("msg", "open upstream", "shard", inst.ShardIndex, "address", inst.Address, "err", err)
		return
	}
	if _, err := s.upstream.Write(packet); err != nil {
		level.Warn(f.logger).Log("msg", "forward datagram", "shard", inst.ShardIndex, "address", inst.Address, "err", err)
	}
}

// session returns the open session for client and inst, dialing a new one when needed.
// The address is resolved and dialed without holding f.mu.
func (f *Forwarder) session(client *net.UDPAddr, inst domain.ShardInstance) (*session, error) {
	key := sessionKey{client: client.String(), address: inst.Address, generation: inst.Generation}

	f.mu.Lock()
	s, ok := f.sessions[key]
	f.mu.Unlock()
	if ok {
		return s, nil
	}

	raddr, err := f.resolve("udp", inst.Address)
	if err != nil {
		return nil, err
	}
	upstream, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[key]; ok {
		_ = upstream.Close()
		return s, nil
	}
	s = &session{upstream: upstream, client: client}
	f.sessions[key] = s
	f.wg.Add(1)
	go f.relay(key, s)
	return s, nil
}

// relay copies replies from the instance to the client until the session is idle.
func (f *Forwarder) relay(key sessionKey, s *session) {
	defer f.wg.Done()
	defer func() {
		f.mu.Lock()
		if f.sessions[key] == s {
			delete(f.sessions, key)
		}
		f.mu.Unlock()
		_ = s.upstream.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		_ = s.upstream.SetReadDeadline(time.Now().Add(f.idle))
		n, err := s.upstream.Read(buf)
		if err != nil {
			if IsTimeout(err) {
				level.Debug(f.logger).Log("msg", "session idle", "client", key.client, "address", key.address)
			}
			return
		}
		if _, err := f.conn.WriteToUDP(buf[:n], s.client); err != nil {
			level.Warn(f.logger).Log("msg", "relay reply", "client", key.client, "err", err)
			return
		}
	}
}

func (f *Forwarder) closeSessions() {
	f.mu.Lock()
	for _, s := range f.sessions {
		_ = s.upstream.Close()
	}
	f.mu.Unlock()
	f.wg.Wait()
}

// SessionCount is the number of open client sessions.
func (f *Forwarder) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
