// Package discovery advertises and browses the ParkHub instance over
// mDNS/DNS-SD (spec §4.H) and manages the self-signed TLS identity used
// for the handshake endpoint.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
)

const (
	serviceType   = "_parkhub._tcp"
	serviceDomain = "local."
	browseTimeout = 5 * time.Second
)

var probePorts = []int{7878, 8080, 3000}

// TXTRecord is the {version, protocol, tls} payload advertised alongside
// the service instance (spec §4.H).
type TXTRecord struct {
	Version  string
	Protocol string
	TLS      bool
}

func (t TXTRecord) entries() []string {
	return []string{
		fmt.Sprintf("version=%s", t.Version),
		fmt.Sprintf("protocol=%s", t.Protocol),
		fmt.Sprintf("tls=%t", t.TLS),
	}
}

// Advertiser registers this ParkHub instance under _parkhub._tcp.local.
type Advertiser struct {
	server *zeroconf.Server
	logger *logging.Logger
}

// Advertise publishes an mDNS service instance named for hostname on
// port, carrying the given TXT record. The caller must call Shutdown
// before the process exits.
func Advertise(hostname string, port int, txt TXTRecord, logger *logging.Logger) (*Advertiser, error) {
	server, err := zeroconf.Register(hostname, serviceType, serviceDomain, port, txt.entries(), nil)
	if err != nil {
		return nil, fmt.Errorf("register mdns service: %w", err)
	}
	return &Advertiser{server: server, logger: logger}, nil
}

// Shutdown stops advertising. It must complete before the daemon
// process drops (spec §4.H: browse/advertise must stop cleanly).
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}

// PeerInstance is one resolved ParkHub instance found on the network.
type PeerInstance struct {
	InstanceName string
	HostName     string
	Port         int
	AddrV4       string
	TXT          []string
}

// Browse collects every distinct _parkhub._tcp.local. instance visible
// within a bounded 5-second window, then stops cleanly (spec §4.H).
func Browse(ctx context.Context) ([]PeerInstance, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("create mdns resolver: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, browseTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	seen := make(map[string]PeerInstance)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			mu.Lock()
			addr := ""
			if len(entry.AddrIPv4) > 0 {
				addr = entry.AddrIPv4[0].String()
			}
			seen[entry.Instance] = PeerInstance{
				InstanceName: entry.Instance,
				HostName:     entry.HostName,
				Port:         entry.Port,
				AddrV4:       addr,
				TXT:          entry.Text,
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(browseCtx, serviceType, serviceDomain, entries); err != nil {
		return nil, fmt.Errorf("browse mdns: %w", err)
	}

	<-browseCtx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	out := make([]PeerInstance, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceName < out[j].InstanceName })
	return out, nil
}

// HealthProbeResult is the outcome of checking a single local port's
// /health endpoint while discovering a co-located instance.
type HealthProbeResult struct {
	Port    int
	Healthy bool
}

// ProbeLocalPorts checks /health on the well-known ParkHub ports
// {7878, 8080, 3000} in parallel, used as a fallback when mDNS is
// unavailable on the local segment (spec §4.H).
func ProbeLocalPorts(ctx context.Context) []HealthProbeResult {
	results := make([]HealthProbeResult, len(probePorts))
	var wg sync.WaitGroup
	client := &http.Client{Timeout: 750 * time.Millisecond}

	for i, port := range probePorts {
		wg.Add(1)
		go func(i, port int) {
			defer wg.Done()
			results[i] = HealthProbeResult{Port: port, Healthy: probeOne(ctx, client, port)}
		}(i, port)
	}
	wg.Wait()
	return results
}

func probeOne(ctx context.Context, client *http.Client, port int) bool {
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
