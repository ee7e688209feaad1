// Command udpreactor-echo dials a UDP remote and echoes every datagram it
// receives back to the same connection, using a single reactor loop
// thread. It exists to exercise the reactor end to end against a real
// kernel and to give the library a runnable demonstration.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ravendale/go-udpreactor"
	"github.com/ravendale/go-udpreactor/echoreader"
	"github.com/ravendale/go-udpreactor/internal/logging"
)

func main() {
	var (
		remoteAddr = flag.String("remote", "127.0.0.1:9999", "UDP remote address to dial and echo against")
		logFile    = flag.String("logfile", "", "path to write logs to (rotated); defaults to stderr")
		verbose    = flag.Bool("v", false, "enable debug-level logging")
		maxEchoes  = flag.Uint64("max-echoes", 0, "stop after echoing this many datagrams (0 = unlimited)")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	logConfig.Output = os.Stderr
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	if *logFile != "" {
		logConfig.RotateFile = logging.NewRotatingFile(*logFile)
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	udpAddr, err := net.ResolveUDPAddr("udp", *remoteAddr)
	if err != nil {
		logger.Errorf("resolving remote address %q: %v", *remoteAddr, err)
		os.Exit(1)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		logger.Errorf("dialing %q: %v", *remoteAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	r, err := udpreactor.New(udpreactor.Params{Logger: logger})
	if err != nil {
		logger.Errorf("constructing reactor: %v", err)
		os.Exit(1)
	}
	r.Start()
	defer r.Close()

	reader := echoreader.New(conn)
	reader.MaxEchoes = *maxEchoes

	cancel, err := r.RegisterConn(conn, reader)
	if err != nil {
		logger.Errorf("registering connection: %v", err)
		os.Exit(1)
	}
	defer cancel()

	logger.Info("echoing datagrams", "remote", udpAddr.String())
	fmt.Printf("udpreactor-echo dialed %s, echoing datagrams; press Ctrl+C to stop\n", udpAddr.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			printStats(reader, r.Metrics())
			return
		case <-ticker.C:
			printStats(reader, r.Metrics())
		}
	}
}

func printStats(reader *echoreader.Reader, m *udpreactor.Metrics) {
	stats := reader.Stats()
	snap := m.Snapshot()
	fmt.Printf("echoed=%d bytes=%d | reactor datagrams=%d errors=%d wakeups=%d tasks=%d active=%d\n",
		stats.Datagrams, stats.Bytes,
		snap.DatagramsReceived, snap.ReceiveErrors, snap.Wakeups, snap.TasksRun, snap.ActiveSlots)
}
