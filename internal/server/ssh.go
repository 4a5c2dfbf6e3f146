package server

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const sshHandshakeTimeout = 20 * time.Second

// SSHConn wraps an SSH session channel as an io.ReadWriteCloser.
type SSHConn struct {
	channel ssh.Channel
	mu      sync.Mutex
}

// Read implements io.Reader.
func (sc *SSHConn) Read(p []byte) (int, error) {
	return sc.channel.Read(p)
}

// Write implements io.Writer.
func (sc *SSHConn) Write(p []byte) (int, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.channel.Write(p)
}

// Close implements io.Closer.
func (sc *SSHConn) Close() error {
	return sc.channel.Close()
}

// SSHHandler runs a line session over an accepted shell channel.
type SSHHandler func(rwc io.ReadWriteCloser, remoteAddr string)

// SSHListener accepts SSH connections. There is no SSH-level authentication;
// users log in with the LOGIN command.
type SSHListener struct {
	*Listener
	config  *ssh.ServerConfig
	handler SSHHandler
	log     *zap.Logger
}

// NewSSHListener creates an SSH listener, loading the host key from
// hostKeyPath or generating an ed25519 key there on first start.
func NewSSHListener(port int, hostKeyPath string, handler SSHHandler, log *zap.Logger) (*SSHListener, error) {
	config := &ssh.ServerConfig{
		ServerVersion: "SSH-2.0-DuskBBS",
		NoClientAuth:  true,
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
			return nil, nil
		},
	}

	signer, err := loadOrGenerateHostKey(hostKeyPath, log)
	if err != nil {
		return nil, fmt.Errorf("host key: %w", err)
	}
	config.AddHostKey(signer)

	l := &SSHListener{config: config, handler: handler, log: log}
	l.Listener = NewListener("ssh", port, l.handleConnection, log)
	return l, nil
}

func loadOrGenerateHostKey(path string, log *zap.Logger) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parse host key %s: %w", path, err)
		}
		log.Info("loaded ssh host key", zap.String("path", path), zap.String("type", signer.PublicKey().Type()))
		return signer, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read host key %s: %w", path, err)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal ed25519 key: %w", err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, pemData, 0600); err != nil {
		return nil, fmt.Errorf("write host key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(pemData)
	if err != nil {
		return nil, fmt.Errorf("parse new ed25519 key: %w", err)
	}
	log.Info("generated ssh host key", zap.String("path", path))
	return signer, nil
}

func (l *SSHListener) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	_ = conn.SetDeadline(time.Now().Add(sshHandshakeTimeout))
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, l.config)
	if err != nil {
		l.log.Debug("ssh handshake failed", zap.String("remote", remoteAddr), zap.Error(err))
		conn.Close()
		return
	}
	defer sshConn.Close()
	_ = conn.SetDeadline(time.Time{})

	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			l.log.Warn("ssh channel accept failed", zap.String("remote", remoteAddr), zap.Error(err))
			continue
		}
		go l.serveChannel(channel, requests, remoteAddr)
	}
}

// serveChannel answers session requests and starts the BBS once the client
// asks for a shell.
func (l *SSHListener) serveChannel(channel ssh.Channel, requests <-chan *ssh.Request, remoteAddr string) {
	started := false
	for req := range requests {
		switch req.Type {
		case "pty-req", "env", "window-change":
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
		case "shell":
			if started {
				_ = req.Reply(false, nil)
				continue
			}
			started = true
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
			go func() {
				l.handler(&SSHConn{channel: channel}, remoteAddr)
				channel.Close()
			}()
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

var _ io.ReadWriteCloser = (*SSHConn)(nil)
