// File: cmd/mapsvr/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Entry point. Real OS-level process fork/supervision is an external
// collaborator (spec.md §1), so this binary boots the whole standalone
// topology described by -config in one OS process: one other-VM and one
// worker-VM per WorkerTunnelID entry (WorkerCount is not consulted), all
// wired through an in-memory tunnel dispatcher (process.OtherContext /
// process.WorkerContext). -role/-worker-idx are only reported in the
// startup log line; they do not restrict which contexts or listeners start,
// and they do not affect CPU pinning (that is -cpu alone).

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/momentics/mapsvr/adapters"
	"github.com/momentics/mapsvr/api"
	"github.com/momentics/mapsvr/cmdfactory"
	"github.com/momentics/mapsvr/control"
	"github.com/momentics/mapsvr/ipcstream"
	"github.com/momentics/mapsvr/netconn"
	"github.com/momentics/mapsvr/process"
	"github.com/momentics/mapsvr/tunnel"
	"github.com/momentics/mapsvr/udp"
	"github.com/momentics/mapsvr/vm"
	"github.com/momentics/mapsvr/vm/noopengine"
	"github.com/momentics/mapsvr/wire"
)

func main() {
	role := flag.String("role", "main", "process role: main, worker, or other")
	workerIdx := flag.Int("worker-idx", -1, "worker tunnel id reported in the startup log (-1: none)")
	configPath := flag.String("config", "", "path to a key=value process config file")
	reload := flag.Bool("reload", false, "connect to a running process's control endpoint and trigger a VM reload")
	cpu := flag.Int("cpu", -1, "pin the startup OS thread to a CPU core (-1: no pinning)")
	flag.Parse()

	cfg := control.DefaultProcessConfig()
	if *configPath != "" {
		loaded, err := control.LoadProcessConfig(*configPath)
		if err != nil {
			log.Fatalf("[mapsvr] %v", err)
		}
		cfg = loaded
	}

	if *reload {
		if err := sendReload(cfg.ControlAddr); err != nil {
			log.Fatalf("[mapsvr] reload: %v", err)
		}
		fmt.Println("reload requested")
		return
	}

	if *cpu >= 0 {
		if err := process.PinSelf(*cpu); err != nil {
			log.Printf("[mapsvr] pin to cpu %d failed: %v", *cpu, err)
		}
	}

	log.Printf("[mapsvr] starting role=%s worker-idx=%d", *role, *workerIdx)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	factory := cmdfactory.New()
	dispatcher := tunnel.NewDispatcher()

	mainEngine := noopengine.New()
	mainSlot := vm.NewSlot("main", cfg.ScriptDir, mainEngine, symbolsFor(factory))
	if err := mainSlot.Init(); err != nil {
		log.Fatalf("[mapsvr] main vm init: %v", err)
	}
	mainCtx := process.NewMainContext(mainSlot)

	otherEngine := noopengine.New()
	otherSlot := vm.NewSlot("other", cfg.ScriptDir, otherEngine, symbolsFor(factory))
	if err := otherSlot.Init(); err != nil {
		log.Fatalf("[mapsvr] other vm init: %v", err)
	}
	otherCtx := process.NewOtherContext(cfg.OtherTunnelID, cfg.WorkerTunnelID, dispatcher, otherSlot, factory)

	controlAdapter := adapters.NewControlAdapter()
	controlAdapter.OnReload(mainSlot.Reload)
	controlAdapter.OnReload(otherSlot.Reload)
	controlAdapter.RegisterDebugProbe("tunnel.ids", func() any { return dispatcher.TunnelIDs() })

	workers := make([]*process.WorkerContext, 0, len(cfg.WorkerTunnelID))
	for _, tunnelID := range cfg.WorkerTunnelID {
		name := fmt.Sprintf("worker-%d", tunnelID)
		engine := noopengine.New()
		slot := vm.NewSlot(name, cfg.ScriptDir, engine, symbolsFor(factory))
		if err := slot.Init(); err != nil {
			log.Fatalf("[mapsvr] %s vm init: %v", name, err)
		}
		controlAdapter.OnReload(slot.Reload)
		workers = append(workers, process.NewWorkerContext(tunnelID, cfg.OtherTunnelID, dispatcher, slot))
	}
	controlAdapter.RegisterDebugProbe("workers.count", func() any { return len(workers) })

	runControlListener(ctx, cfg.ControlAddr, controlAdapter)
	runWSListener(ctx, cfg.WSListenAddr, workers, controlAdapter)
	runIPCListener(ctx, cfg.IPCListenAddr, otherCtx, cfg.AppID)
	for _, remote := range cfg.IPCConnect {
		runIPCDial(ctx, remote, otherCtx, cfg.AppID)
	}
	runUDPListener(ctx, cfg.UDPBindAddr, factory, otherSlot, controlAdapter)

	loop := process.NewLoop(50 * time.Millisecond)
	go loop.Run(func(now time.Time) {
		mainCtx.Tick()
		for _, w := range workers {
			w.Tick()
		}
		otherCtx.Tick(now.Unix())
	})

	<-ctx.Done()
	log.Printf("[mapsvr] shutting down")
	loop.Stop()
	mainSlot.Stop()
	for _, w := range workers {
		w.VM.Stop()
	}
	otherSlot.Stop()
}

func symbolsFor(factory *cmdfactory.Factory) vm.Symbols {
	return vm.Symbols{
		Logger: log.Printf,
		BytesToMessage: func(cmd wire.Command, b []byte) (wire.Message, bool, error) {
			return factory.Parse(cmd, b)
		},
		MessageToBytes:   func(msg wire.Message) ([]byte, error) { return msg.Marshal() },
		MonotonicSeconds: func() int64 { return time.Now().Unix() },
		HighResNowNanos:  func() int64 { return time.Now().UnixNano() },
	}
}

var connCounter uint64

func nextGid() uint64 {
	connCounter++
	return connCounter
}

func apiConnectionId(gid uint64) api.ConnectionId {
	return api.ConnectionId(gid)
}

// runWSListener accepts client WebSocket connections and fans each one out
// to a worker by round-robin over the configured worker set.
func runWSListener(ctx context.Context, addr string, workers []*process.WorkerContext, ctrl api.Control) {
	if addr == "" || len(workers) == 0 {
		return
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("[mapsvr] ws listen %s: %v", addr, err)
		return
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	go func() {
		var next int
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			w := workers[next%len(workers)]
			next++
			gid := nextGid()
			conn := netconn.New(c, apiConnectionId(gid), int(w.TunnelID))
			w.OnClientConnect(conn)
			ctrl.IncMetric("clients.connected", 1)
			go serveClientConn(conn, w, gid, ctrl)
		}
	}()
}

func serveClientConn(conn *netconn.Conn, w *process.WorkerContext, gid uint64, ctrl api.Control) {
	defer func() {
		conn.Close()
		w.OnClientClose(apiConnectionId(gid))
		ctrl.IncMetric("clients.closed", 1)
	}()
	for {
		if _, err := conn.FillFromSocket(); err != nil {
			return
		}
		w.OnProcessConnection(conn)
		if conn.IsMarkedClose() {
			return
		}
	}
}

// runIPCListener accepts inbound IPC-stream peers (e.g. an external tool
// talking the AuthHandshake protocol) and delivers bound messages straight
// into the other-VM.
func runIPCListener(ctx context.Context, addr string, otherCtx *process.OtherContext, selfAppID string) {
	if addr == "" {
		return
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("[mapsvr] ipc listen %s: %v", addr, err)
		return
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			gid := nextGid()
			conn := netconn.New(c, apiConnectionId(gid), -1)
			go serveIPCConn(conn, otherCtx, selfAppID, false)
		}
	}()
}

// runIPCDial establishes this instance's outbound half of an IPC-stream
// connection to remote (spec.md §4.2: the outbound side waits for the
// peer's handshake and echoes its own back on receiving it).
func runIPCDial(ctx context.Context, remote string, otherCtx *process.OtherContext, selfAppID string) {
	go func() {
		c, err := net.DialTimeout("tcp", remote, 5*time.Second)
		if err != nil {
			log.Printf("[mapsvr] ipc dial %s: %v", remote, err)
			return
		}
		gid := nextGid()
		conn := netconn.New(c, apiConnectionId(gid), -1)
		go func() {
			<-ctx.Done()
			conn.Close()
		}()
		serveIPCConn(conn, otherCtx, selfAppID, true)
	}()
}

func serveIPCConn(conn *netconn.Conn, otherCtx *process.OtherContext, selfAppID string, outbound bool) {
	defer conn.Close()
	st := &ipcstream.ConnState{Outbound: outbound}
	if err := ipcstream.OnNewConnection(conn, st, selfAppID); err != nil {
		log.Printf("[mapsvr] ipc handshake: %v", err)
		return
	}
	for {
		if _, err := conn.FillFromSocket(); err != nil {
			otherCtx.AuthTable.Unbind(uint64(conn.GetConnGid()))
			return
		}
		ipcstream.OnProcessConnection(conn, st, otherCtx.AuthTable, selfAppID, ipcstream.HandlerFunc(
			func(_ api.ConnCtx, fromAppID string, pkg wire.ProtoPackage) {
				otherCtx.OnIPCBoundMessage(fromAppID, pkg)
			}))
		if conn.IsMarkedClose() {
			otherCtx.AuthTable.Unbind(uint64(conn.GetConnGid()))
			return
		}
	}
}

func runUDPListener(ctx context.Context, addr string, factory *cmdfactory.Factory, dispatcher udp.Dispatcher, ctrl api.Control) {
	if addr == "" {
		return
	}
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		log.Printf("[mapsvr] udp listen %s: %v", addr, err)
		return
	}
	handler := udp.NewHandler(factory, dispatcher)
	go func() {
		<-ctx.Done()
		pc.Close()
	}()
	go func() {
		buf := make([]byte, udp.MaxDatagramSize)
		for {
			n, remote, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			host, port := splitHostPort(remote.String())
			data := append([]byte(nil), buf[:n]...)
			ctrl.IncMetric("udp.datagrams", 1)
			handler.OnDatagram(data, host, port)
		}
	}()
}

func splitHostPort(s string) (string, int) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return s, 0
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}

// controlCommand is one line read off the control socket, carrying the
// connection it arrived on so the handler chain can reply directly.
type controlCommand struct {
	name string
	conn net.Conn
}

// runControlListener accepts newline-terminated text commands on addr.
// "RELOAD" triggers every registered VM's reload hook (spec.md §6);
// "STATS" dumps the control adapter's merged config/metrics/debug state.
// Both run through the same logging+recovery middleware chain, so a
// panicking debug probe can never take the control listener down with it.
func runControlListener(ctx context.Context, addr string, controlAdapter api.Control) {
	if addr == "" {
		return
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("[mapsvr] control listen %s: %v", addr, err)
		return
	}

	base := adapters.HandlerFunc(func(data any) error {
		cmd := data.(controlCommand)
		switch cmd.name {
		case "RELOAD":
			control.TriggerHotReload()
			fmt.Fprintln(cmd.conn, "ok")
		case "STATS":
			fmt.Fprintf(cmd.conn, "%v\n", controlAdapter.Stats())
		default:
			fmt.Fprintln(cmd.conn, "unknown command")
		}
		return nil
	})
	chain := adapters.NewMiddlewareHandler(base).
		Use(adapters.RecoveryMiddleware).
		Use(adapters.LoggingMiddleware).
		Use(adapters.MetricsMiddleware(controlAdapter))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil {
					return
				}
				name := strings.TrimSpace(line)
				if err := chain.Handle(controlCommand{name: name, conn: c}); err != nil {
					log.Printf("[mapsvr] control command %q: %v", name, err)
				}
			}()
		}
	}()
}

func sendReload(addr string) error {
	c, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return err
	}
	defer c.Close()
	if _, err := fmt.Fprint(c, "RELOAD\n"); err != nil {
		return err
	}
	_, err = bufio.NewReader(c).ReadString('\n')
	return err
}
