package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHRunner executes the admin tool on a remote host over SSH.
type SSHRunner struct {
	Host                        string
	Port                        string
	User                        string
	KeyPath                     string
	Passphrase                  []byte
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	// DialTimeout bounds connection setup.
	DialTimeout time.Duration
	// Timeout bounds one invocation including dial. Zero disables it.
	Timeout time.Duration
}

// Run executes name with args on the remote host.
func (r SSHRunner) Run(ctx context.Context, name string, args ...string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	client, err := r.dial(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Timeout(r.timeoutReason(name, ctxErr))
		}
		return LaunchFailure(fmt.Sprintf("ssh dial: %v", err))
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return LaunchFailure(fmt.Sprintf("ssh session: %v", err))
	}
	defer session.Close()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(JoinCommand(name, args)); err != nil {
		return LaunchFailure(fmt.Sprintf("ssh start: %v", err))
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		return Timeout(r.timeoutReason(name, ctx.Err()))
	case err := <-done:
		return r.outcome(err, stdout.String(), stderr.String())
	}
}

func (r SSHRunner) outcome(err error, stdout, stderr string) Outcome {
	if err == nil {
		return Completed(stdout, stderr, 0)
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return Completed(stdout, stderr, exitErr.ExitStatus())
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return LaunchFailure("ssh: remote command exited without status")
	}
	return LaunchFailure(err.Error())
}

func (r SSHRunner) timeoutReason(name string, ctxErr error) string {
	if errors.Is(ctxErr, context.DeadlineExceeded) && r.Timeout > 0 {
		return fmt.Sprintf("%s exceeded %s", name, r.Timeout)
	}
	return fmt.Sprintf("%s: %v", name, ctxErr)
}

func (r SSHRunner) dial(ctx context.Context) (*ssh.Client, error) {
	address, err := r.address()
	if err != nil {
		return nil, err
	}

	config, err := r.clientConfig()
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: r.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (r SSHRunner) address() (string, error) {
	host := strings.TrimSpace(r.Host)
	if host == "" {
		return "", fmt.Errorf("ssh host is required")
	}

	if r.Port != "" {
		return net.JoinHostPort(host, r.Port), nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}

	return net.JoinHostPort(host, "22"), nil
}

func (r SSHRunner) clientConfig() (*ssh.ClientConfig, error) {
	if r.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	signer, err := r.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if r.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := r.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            r.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         r.DialTimeout,
	}, nil
}

func (r SSHRunner) signer() (ssh.Signer, error) {
	if r.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}

	privateKey, err := os.ReadFile(r.KeyPath)
	if err != nil {
		return nil, err
	}

	if len(r.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, r.Passphrase)
	}

	return ssh.ParsePrivateKey(privateKey)
}

func (r SSHRunner) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(r.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	return knownhosts.New(path)
}
