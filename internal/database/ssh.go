package database

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"

	"golang.org/x/crypto/ssh"
)

// SetupTunnel opens an SSH tunnel to the host named in sourceURL and
// returns the URL rewritten to point at the local end of the tunnel,
// plus a cleanup function. Used when the source database is only
// reachable through a bastion host.
func SetupTunnel(cfg Config, sourceURL string) (string, func(), error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse source url: %w", err)
	}

	key, err := os.ReadFile(cfg.SSHKey)
	if err != nil {
		return "", nil, fmt.Errorf("read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return "", nil, fmt.Errorf("parse private key: %w", err)
	}

	sshConfig := &ssh.ClientConfig{
		User: cfg.SSHUser,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	sshClient, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", cfg.SSHHost, cfg.SSHPort), sshConfig)
	if err != nil {
		return "", nil, fmt.Errorf("connect to SSH server: %w", err)
	}

	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		sshClient.Close()
		return "", nil, fmt.Errorf("setup local listener: %w", err)
	}

	remoteAddr := u.Host
	if u.Port() == "" {
		remoteAddr = net.JoinHostPort(u.Hostname(), "5432")
	}

	go func() {
		for {
			localConn, err := listener.Accept()
			if err != nil {
				return
			}

			remoteConn, err := sshClient.Dial("tcp", remoteAddr)
			if err != nil {
				slog.Error("dial remote through tunnel", "addr", remoteAddr, "error", err)
				localConn.Close()
				continue
			}

			go forwardConn(localConn, remoteConn)
			go forwardConn(remoteConn, localConn)
		}
	}()

	u.Host = listener.Addr().String()

	cleanup := func() {
		listener.Close()
		sshClient.Close()
	}

	return u.String(), cleanup, nil
}

func forwardConn(dst, src net.Conn) {
	defer dst.Close()
	defer src.Close()
	io.Copy(dst, src)
}
