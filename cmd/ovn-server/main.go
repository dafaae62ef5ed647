// ovn-server runs one Open Vote Network election: it accepts exactly
// NUM_PARTICIPANTS client connections over TLS-wrapped websockets, runs
// each through the session orchestrator in pkg/server, and broadcasts
// every participant's masked ballot once all ballots have been
// accepted; each client recovers the tally from those ballots itself.
//
// Configuration is read entirely from the environment (spec.md §6):
//
//	SERVER_HOSTNAME, PORT
//	SERVER_SELF_SIGNED_CERT_PATH, SERVER_PRIVATE_KEY_PATH
//	SERVER_LOGFILE_PATH
//	THE_QUESTION, NUM_PARTICIPANTS
//
// This mirrors the shape of the teacher's cmd/matter-light-device/main.go:
// parse configuration, construct the long-lived orchestrator, run it
// until interrupted.
package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/pion/logging"

	"github.com/openvote/ovn/pkg/config"
	"github.com/openvote/ovn/pkg/server"
	"github.com/openvote/ovn/pkg/transport"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("ovn-server: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogfilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("ovn-server: open logfile: %v", err)
	}
	defer logFile.Close()

	loggerFactory := &logging.DefaultLoggerFactory{Writer: logFile}
	ovnLog := loggerFactory.NewLogger("ovn-server")

	ctx := server.NewServerContext(cfg.NumParticipants, cfg.TheQuestion, loggerFactory.NewLogger("orchestrator"))

	cert, err := tls.LoadX509KeyPair(cfg.SelfSignedCertPath, cfg.PrivateKeyPath)
	if err != nil {
		log.Fatalf("ovn-server: load tls keypair: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/vote", func(w http.ResponseWriter, r *http.Request) {
		ch, err := transport.Upgrade(w, r)
		if err != nil {
			ovnLog.Warnf("upgrade failed: %v", err)
			return
		}
		go func() {
			if err := server.HandleConnection(ctx, ch); err != nil {
				ovnLog.Warnf("connection ended: %v", err)
			}
		}()
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerHostname, cfg.Port)
	httpServer := &http.Server{
		Addr:      addr,
		Handler:   mux,
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}

	ovnLog.Infof("listening on %s for %d participants", addr, cfg.NumParticipants)
	if err := httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		log.Fatalf("ovn-server: %v", err)
	}
}
