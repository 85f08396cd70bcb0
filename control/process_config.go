// control/process_config.go
// Author: momentics <momentics@gmail.com>
//
// Typed process configuration (spec.md §6 "Configuration") loaded from a
// flat key=value file, mirroring the dynamic ConfigStore above but with a
// fixed schema for the fields every process role needs at startup.

package control

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcessConfig holds every field spec.md §6 lists as externally configured.
type ProcessConfig struct {
	ScriptDir      string
	AppID          string
	WorkerCount    int
	OtherTunnelID  int32
	WorkerTunnelID []int32
	UDPBindAddr    string
	IPCListenAddr  string
	IPCConnect     []string // remote IPC endpoints this instance dials out to
	WSListenAddr   string
	ControlAddr    string // local TCP endpoint the -reload flag connects to
}

// DefaultProcessConfig returns a baseline configuration for local development.
func DefaultProcessConfig() *ProcessConfig {
	return &ProcessConfig{
		ScriptDir:      "./scripts",
		AppID:          "mapsvr",
		WorkerCount:    4,
		OtherTunnelID:  1000,
		WorkerTunnelID: []int32{0, 1, 2, 3},
		UDPBindAddr:    ":9000",
		IPCListenAddr:  ":9100",
		WSListenAddr:   ":9200",
		ControlAddr:    "127.0.0.1:9300",
	}
}

// LoadProcessConfig reads a flat "key = value" file, one setting per line,
// '#' starts a comment, blank lines ignored. Unknown keys are rejected so a
// typo in deployment config fails fast at process init (spec.md §7 class 7
// territory: a fatal misconfiguration, not a recoverable routing miss).
func LoadProcessConfig(path string) (*ProcessConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("process_config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := DefaultProcessConfig()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("process_config: malformed line %q", line)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if err := cfg.set(key, val); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("process_config: scan %s: %w", path, err)
	}
	return cfg, nil
}

func (c *ProcessConfig) set(key, val string) error {
	switch key {
	case "script_dir":
		c.ScriptDir = val
	case "app_id":
		c.AppID = val
	case "worker_count":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("process_config: worker_count: %w", err)
		}
		c.WorkerCount = n
	case "other_tunnel_id":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("process_config: other_tunnel_id: %w", err)
		}
		c.OtherTunnelID = int32(n)
	case "worker_tunnel_ids":
		c.WorkerTunnelID = c.WorkerTunnelID[:0]
		for _, tok := range strings.Split(val, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("process_config: worker_tunnel_ids: %w", err)
			}
			c.WorkerTunnelID = append(c.WorkerTunnelID, int32(n))
		}
	case "udp_bind_addr":
		c.UDPBindAddr = val
	case "ipc_listen_addr":
		c.IPCListenAddr = val
	case "ipc_connect":
		c.IPCConnect = nil
		for _, tok := range strings.Split(val, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				c.IPCConnect = append(c.IPCConnect, tok)
			}
		}
	case "ws_listen_addr":
		c.WSListenAddr = val
	case "control_addr":
		c.ControlAddr = val
	default:
		return fmt.Errorf("process_config: unknown key %q", key)
	}
	return nil
}
