/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/ecocycle/connect/internal/apiclient"
	"github.com/ecocycle/connect/internal/credentials"
	"github.com/ecocycle/connect/internal/session"
	"github.com/ecocycle/connect/internal/validation"
)

var errNotLoggedIn = errors.New("not logged in, run 'ecocycle login' first")

// clientSession is the per-invocation wiring of credentials, client and session.
type clientSession struct {
	creds   *credentials.Store
	client  *apiclient.Client
	manager *session.Manager
	detach  []func()
}

// Close detaches every unauthorized callback.
func (s *clientSession) Close() {
	s.manager.Close()
	for _, fn := range s.detach {
		fn()
	}
}

type sessionOptions struct {
	// restore resolves a stored token into an identity before returning.
	restore bool
	// expiryHint prints a sign-in hint when the backend rejects the token.
	expiryHint bool
}

func openSession(ctx context.Context, opts sessionOptions) (*clientSession, error) {
	durable, err := credentials.NewFileBackend(cfg.Credentials.DurablePath())
	if err != nil {
		return nil, err
	}
	ephemeral, err := credentials.NewFileBackend(cfg.Credentials.EphemeralPath())
	if err != nil {
		return nil, err
	}
	creds := credentials.NewStore(durable, ephemeral, credentials.WithLogger(logger))

	client, err := apiclient.New(cfg.API.BaseURL, creds,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger),
		apiclient.WithUserAgent("ecocycle-cli/"+version),
	)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	s := &clientSession{creds: creds, client: client}
	if opts.expiryHint {
		s.detach = append(s.detach, client.OnUnauthorized(func() {
			printer.Warning("Your session has expired. Run 'ecocycle login' to sign in again.")
		}))
	}
	s.manager = session.New(client, creds, session.WithLogger(logger))
	if opts.restore {
		s.manager.Initialize(ctx)
	}
	return s, nil
}

// printValidation reports field errors and returns err for the exit status.
func printValidation(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Fields))
		for field := range verr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			printer.Error("%s", verr.Fields[field])
		}
		return errors.New("invalid input")
	}
	return err
}

// prompt reads one line from in after printing label to out. It reads byte
// by byte so that later prompts on the same reader see the following lines.
func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := readLine(in)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

// promptSecret reads a value without echo when in is a terminal.
func promptSecret(in io.Reader, out io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, label)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	return prompt(in, out, label)
}
