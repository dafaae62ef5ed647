// ovn-client connects one participant to a running ovn-server election
// and casts a single yes/no ballot.
//
// Usage:
//
//	ovn-client [--always-vote {yes,no}]
//
// Without --always-vote, the vote is read interactively from stdin,
// reprompting on anything other than "yes" or "no" (case-insensitive,
// surrounding whitespace ignored; spec.md §6). Configuration is otherwise read from the environment:
//
//	SERVER_HOSTNAME, PORT
//	CLIENT_SELF_SIGNED_CERT_PATH, CLIENT_LOGFILE_PATH
//	PARTICIPANTS_NUMBER
package main

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pion/logging"

	"github.com/openvote/ovn/pkg/client"
	"github.com/openvote/ovn/pkg/config"
	"github.com/openvote/ovn/pkg/transport"
)

func main() {
	alwaysVote := flag.String("always-vote", "", "cast this vote ('yes' or 'no') without prompting")
	flag.Parse()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("ovn-client: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogfilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("ovn-client: open logfile: %v", err)
	}
	defer logFile.Close()
	loggerFactory := &logging.DefaultLoggerFactory{Writer: logFile}

	vote, err := resolveVote(*alwaysVote)
	if err != nil {
		log.Fatalf("ovn-client: %v", err)
	}

	certPEM, err := os.ReadFile(cfg.SelfSignedCertPath)
	if err != nil {
		log.Fatalf("ovn-client: read cert: %v", err)
	}
	pool := tlsCertPool(certPEM)

	url := fmt.Sprintf("wss://%s:%d/vote", cfg.ServerHostname, cfg.Port)
	ch, err := transport.Dial(transport.DialConfig{
		URL: url,
		TLSConfig: &tls.Config{
			RootCAs: pool,
			// Hostname verification is off by design for this
			// self-signed, test-scale deployment (spec.md §6): the
			// standard Verify callback below still checks the
			// certificate chains against the pinned cert, it just
			// never compares the cert's DNS names against the dial
			// address.
			InsecureSkipVerify: true, //nolint:gosec
			VerifyConnection: func(cs tls.ConnectionState) error {
				opts := x509.VerifyOptions{Roots: pool, Intermediates: x509.NewCertPool()}
				for _, cert := range cs.PeerCertificates[1:] {
					opts.Intermediates.AddCert(cert)
				}
				_, err := cs.PeerCertificates[0].Verify(opts)
				return err
			},
		},
	})
	if err != nil {
		log.Fatalf("ovn-client: dial %s: %v", url, err)
	}

	res, err := client.Run(client.Config{Channel: ch, Vote: vote, LoggerFactory: loggerFactory})
	if err != nil {
		log.Fatalf("ovn-client: %v", err)
	}

	fmt.Printf("question: %s\n", res.Question)
	fmt.Printf("tally: %d yes votes\n", res.Tally)
}

func tlsCertPool(certPEM []byte) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(certPEM)
	return pool
}

func resolveVote(flagValue string) (int, error) {
	switch strings.ToLower(flagValue) {
	case "yes":
		return 1, nil
	case "no":
		return 0, nil
	case "":
		return promptVote()
	default:
		return 0, fmt.Errorf("--always-vote must be 'yes' or 'no', got %q", flagValue)
	}
}

func promptVote() (int, error) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("vote yes or no: ")
		if !scanner.Scan() {
			return 0, fmt.Errorf("no vote entered: %w", scanner.Err())
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "yes":
			return 1, nil
		case "no":
			return 0, nil
		}
		fmt.Println("please answer exactly \"yes\" or \"no\"")
	}
}
