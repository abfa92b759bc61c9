package game

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Dispatcher executes one line of input from sessionID. Returning true
// indicates the connection should terminate.
type Dispatcher func(sessionID EntityID, line string) bool

// DisconnectHandler is invoked once a connection's read loop ends, whether
// by client hangup, network error, or a Dispatcher-requested quit. It never
// fires twice for the same sessionID, including sessions ended by /kick
// (§4.F: an admin-triggered kick unregisters the connection directly, which
// this handler still observes once the blocked read unblocks).
type DisconnectHandler func(sessionID EntityID)

type serverConfig struct {
	enableTLS bool
	certFile  string
	keyFile   string
}

var (
	netListenFunc         = net.Listen
	tlsListenFunc         = tls.Listen
	ensureCertificateFunc = ensureCertificate
)

func ensureCertificate(certFile, keyFile, addr string) (tls.Certificate, bool, error) {
	if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
		return cert, false, nil
	}

	if err := generateSelfSignedCert(certFile, keyFile, addr); err != nil {
		return tls.Certificate{}, false, err
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return tls.Certificate{}, false, err
	}
	return cert, true, nil
}

func generateSelfSignedCert(certFile, keyFile, addr string) error {
	if dir := filepath.Dir(certFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if dir := filepath.Dir(keyFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject: pkix.Name{
			CommonName:   "TinyMUD",
			Organization: []string{"TinyMUD"},
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		tmpl.DNSNames = append(tmpl.DNSNames, "localhost")
		tmpl.IPAddresses = append(tmpl.IPAddresses, net.ParseIP("127.0.0.1"), net.ParseIP("::1"))
	} else if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
	} else {
		tmpl.DNSNames = append(tmpl.DNSNames, host)
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		return err
	}

	certOut, err := os.OpenFile(certFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes}); err != nil {
		_ = certOut.Close()
		return err
	}
	if err := certOut.Close(); err != nil {
		return err
	}

	keyOut, err := os.OpenFile(keyFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := pem.Encode(keyOut, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}); err != nil {
		_ = keyOut.Close()
		return err
	}
	return keyOut.Close()
}

// handleConn owns one telnet connection end to end: it mints a session id,
// registers the live output channel, pumps it to the wire, and feeds every
// received line to dispatch until the connection or the dispatcher ends it.
func handleConn(conn net.Conn, world *World, dispatch Dispatcher, onDisconnect DisconnectHandler) {
	session := NewTelnetSession(conn)
	defer session.Close()

	sessionID := NewEntityID()

	world.Lock()
	c := world.RegisterConn(sessionID)
	c.Closer = func() { _ = conn.Close() }
	world.Unlock()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for out := range c.Output {
			if err := session.WriteString(out + "\r\n"); err != nil {
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Time{})

	for {
		line, err := session.ReadLine()
		if err != nil {
			break
		}
		line = Trim(line)
		if line == "" {
			continue
		}
		if quit := dispatch(sessionID, line); quit {
			break
		}
	}

	world.Lock()
	world.UnregisterConn(sessionID)
	world.Unlock()

	<-writerDone

	if onDisconnect != nil {
		onDisconnect(sessionID)
	}
}

// ListenAndServe starts a plaintext telnet listener on addr. dispatch
// receives every line from every connection; onDisconnect, if non-nil, is
// called once per connection after its session has fully unwound.
func ListenAndServe(addr string, world *World, dispatch Dispatcher, onDisconnect DisconnectHandler) error {
	return listenAndServe(addr, world, dispatch, onDisconnect, serverConfig{})
}

// ListenAndServeTLS behaves like ListenAndServe but secures the connection
// using TLS with the provided certificate and key files. If the files do not
// exist, a self-signed certificate is generated.
func ListenAndServeTLS(addr, certFile, keyFile string, world *World, dispatch Dispatcher, onDisconnect DisconnectHandler) error {
	return listenAndServe(addr, world, dispatch, onDisconnect, serverConfig{
		enableTLS: true,
		certFile:  certFile,
		keyFile:   keyFile,
	})
}

func listenAndServe(addr string, world *World, dispatch Dispatcher, onDisconnect DisconnectHandler, cfg serverConfig) error {
	if dispatch == nil {
		return fmt.Errorf("dispatch must not be nil")
	}
	if world == nil {
		return fmt.Errorf("world must not be nil")
	}

	var ln net.Listener
	var err error
	if cfg.enableTLS {
		cert, created, certErr := ensureCertificateFunc(cfg.certFile, cfg.keyFile, addr)
		if certErr != nil {
			return certErr
		}
		if created {
			fmt.Printf("Generated self-signed TLS certificate at %s and %s\n", cfg.certFile, cfg.keyFile)
		}
		tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}}
		ln, err = tlsListenFunc("tcp", addr, tlsConfig)
		if err != nil {
			return err
		}
		fmt.Printf("TinyMUD listening on %s (TLS enabled, telnet ready)\n", ln.Addr())
	} else {
		ln, err = netListenFunc("tcp", addr)
		if err != nil {
			return err
		}
		fmt.Printf("TinyMUD listening on %s (telnet ready)\n", ln.Addr())
	}
	defer ln.Close()

	return acceptConnections(ln, func(conn net.Conn) {
		go handleConn(conn, world, dispatch, onDisconnect)
	})
}

const (
	acceptBackoffStart = 50 * time.Millisecond
	acceptBackoffMax   = time.Second
)

var acceptSleep = time.Sleep

func acceptConnections(ln net.Listener, handle func(net.Conn)) error {
	backoff := acceptBackoffStart
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isTemporaryAcceptError(err) {
				fmt.Printf("Temporary error accepting connection: %v; retrying in %s\n", err, backoff)
				acceptSleep(backoff)
				backoff *= 2
				if backoff > acceptBackoffMax {
					backoff = acceptBackoffMax
				}
				continue
			}
			return err
		}
		backoff = acceptBackoffStart
		handle(conn)
	}
}

func isTemporaryAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() || ne.Temporary() {
			return true
		}
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	return false
}
