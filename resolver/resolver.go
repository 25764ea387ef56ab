/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package resolver turns a host/service pair into a list of dialable
// endpoints and keeps that list current across DNS changes through an
// explicit Rescan.
package resolver

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"

	libptc "github.com/nabbar/golib/network/protocol"
)

// Endpoint is one resolved, dialable address.
type Endpoint struct {
	IP   net.IP
	Port int
}

// String returns the endpoint in host:port form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(e.Port))
}

// Resolver resolves a host/service pair into a set of endpoints, refreshed
// on demand via Rescan.
type Resolver interface {
	// Rescan re-resolves the host and service and replaces the cached
	// endpoint set on success. On failure the previous set is kept.
	Rescan(ctx context.Context) error

	// Endpoints returns a snapshot of the last successfully resolved
	// endpoint set.
	Endpoints() []Endpoint

	// Network returns the configured network family.
	Network() libptc.NetworkProtocol
}

type resolver struct {
	mu sync.RWMutex

	network libptc.NetworkProtocol
	host    string
	service string

	res *net.Resolver

	endpoints []Endpoint
}

// New builds a Resolver for host/service over the given network family. No
// resolution happens until the first Rescan.
func New(network libptc.NetworkProtocol, host, service string) Resolver {
	return &resolver{
		network: network,
		host:    host,
		service: service,
		res:     net.DefaultResolver,
	}
}

func (r *resolver) Network() libptc.NetworkProtocol {
	return r.network
}

func (r *resolver) Endpoints() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

func (r *resolver) Rescan(ctx context.Context) error {
	ips, err := r.res.LookupIP(ctx, lookupNetwork(r.network), r.host)
	if err != nil {
		return err
	}

	port, err := r.res.LookupPort(ctx, r.network.Code(), r.service)
	if err != nil {
		return err
	}

	endpoints := make([]Endpoint, 0, len(ips))
	for _, ip := range ips {
		endpoints = append(endpoints, Endpoint{IP: ip, Port: port})
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].String() < endpoints[j].String()
	})

	r.mu.Lock()
	r.endpoints = endpoints
	r.mu.Unlock()

	return nil
}

// lookupNetwork maps a NetworkProtocol onto the "ip"/"ip4"/"ip6" network
// argument expected by net.Resolver.LookupIP.
func lookupNetwork(n libptc.NetworkProtocol) string {
	switch n {
	case libptc.NetworkTCP4, libptc.NetworkUDP4, libptc.NetworkIP4:
		return "ip4"
	case libptc.NetworkTCP6, libptc.NetworkUDP6, libptc.NetworkIP6:
		return "ip6"
	default:
		return "ip"
	}
}
