// Command tqsql-ping dials a MySQL/MariaDB-compatible server, completes the
// handshake, and issues a single COM_PING, printing the outcome. It exists
// to exercise the core library end to end and as a template for wiring the
// connection driver into a real process: config loading, metrics, and
// logging all live here, not in the library itself.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/mevdschee/tqsql"
	"github.com/mevdschee/tqsql/netio/tlsopts"
	"github.com/mevdschee/tqsql/tqsqlmetrics"
)

func main() {
	configPath := flag.String("config", "tqsql-ping.ini", "Path to configuration file")
	metricsAddr := flag.String("metrics", ":9091", "Metrics endpoint address")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tqsqlmetrics.Init()
	go func() {
		http.Handle("/metrics", tqsqlmetrics.Handler())
		log.Printf("Metrics endpoint at http://localhost%s/metrics", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	mode, err := parseTLSMode(cfg.TLSMode)
	if err != nil {
		log.Fatalf("Invalid tls_mode: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := tqsql.Connect(ctx, tqsql.ConnectOption{
		Network:  cfg.Network,
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		Database: cfg.Database,
		TLS:      tlsopts.Options{Mode: mode},
		Recorder: tqsqlmetrics.Prometheus{},
	})
	if err != nil {
		log.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to %s (server version %s, connection id %d)",
		cfg.Address, conn.Session().ServerVersion(), conn.Session().ConnectionID())

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Ping failed: %v", err)
	}

	log.Println("Ping ok")
}

func parseTLSMode(s string) (tlsopts.Mode, error) {
	switch s {
	case "disable", "":
		return tlsopts.Disable, nil
	case "prefer":
		return tlsopts.Prefer, nil
	case "require":
		return tlsopts.Require, nil
	case "verify-ca":
		return tlsopts.VerifyCA, nil
	case "verify-full":
		return tlsopts.VerifyFull, nil
	default:
		return 0, &unknownTLSModeError{s}
	}
}

type unknownTLSModeError struct {
	mode string
}

func (e *unknownTLSModeError) Error() string {
	return "unknown tls_mode " + e.mode
}
