package test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/jhillyerd/goldiff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/suite"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/rest/client"
	"github.com/runic/mailman/pkg/server"
	"github.com/runic/mailman/pkg/wizard"
)

const (
	restBaseURL = "http://127.0.0.1:9099/"
	webAddr     = "127.0.0.1:9099"

	// requestTimeout keeps a misbehaving server from stalling the suite.
	requestTimeout = 5 * time.Second
)

type IntegrationSuite struct {
	suite.Suite
	svcs       *server.Services
	stopServer func()
}

func (s *IntegrationSuite) SetupSuite() {
	svcs, stopServer, err := startServer()
	s.Require().NoError(err)
	s.svcs = svcs
	s.stopServer = stopServer
}

func (s *IntegrationSuite) TearDownSuite() {
	if s.stopServer != nil {
		s.stopServer()
	}
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) TestStatusBoard() {
	c, err := newClient()
	s.Require().NoError(err)

	status, err := c.Refresh(context.Background())
	s.Require().NoError(err)

	b := &bytes.Buffer{}
	fmt.Fprintf(b, "Refreshing: %v\n", status.Refreshing)
	for _, svc := range status.Services {
		fmt.Fprintf(b, "%-8s %-8s %-12s %s\n", svc.Name, svc.Label, svc.Uptime, svc.LastChecked)
	}
	goldiff.File(s.T(), b.Bytes(), "testdata", "status.golden")
}

func (s *IntegrationSuite) TestWizardWalk() {
	ctx := context.Background()
	c, err := newClient()
	s.Require().NoError(err)

	_, err = c.WizardDetails(ctx, map[string]string{"hostname": "mx.runic.test"})
	s.Require().NoError(err)

	b := &bytes.Buffer{}
	w, err := c.Wizard(ctx)
	s.Require().NoError(err)
	s.Require().Len(w.Steps, wizard.StepCount)
	for i := 0; i < wizard.StepCount; i++ {
		s.Require().Equal(i, w.Current, "wizard state must persist across requests")
		fmt.Fprintf(b, "%2d %-12s %3d%% %-6s %s\n", w.Current, w.Steps[w.Current].ID, w.Progress,
			w.NextLabel, w.Kind)
		if i == wizard.StepCount-1 {
			s.Require().False(w.CanNext)
			break
		}
		s.Require().True(w.CanNext)
		w, err = c.WizardNext(ctx)
		s.Require().NoError(err)
	}
	s.Require().NotNil(w.Complete)
	for _, ap := range w.Complete.AccessPoints {
		fmt.Fprintf(b, "%s: %s\n", ap.Name, ap.Value)
	}
	goldiff.File(s.T(), b.Bytes(), "testdata", "wizard.golden")

	// Sessions are per client.
	other, err := newClient()
	s.Require().NoError(err)
	w, err = other.Wizard(ctx)
	s.Require().NoError(err)
	s.Equal(0, w.Current)
	s.Equal("mailman.example.com", w.Details.Hostname)
}

func (s *IntegrationSuite) TestEditorRoundTrip() {
	ctx := context.Background()
	c, err := newClient()
	s.Require().NoError(err)

	b := &bytes.Buffer{}
	e, err := c.SelectService(ctx, "dovecot")
	s.Require().NoError(err)
	fmt.Fprintf(b, "Service: %s (%s)\n", e.Service.Name, e.Service.ID)
	for _, f := range e.Files {
		fmt.Fprintf(b, "  %s %s\n", f.Name, f.Path)
	}

	e, err = c.SelectFile(ctx, "dovecot.conf")
	s.Require().NoError(err)
	s.Require().Equal("dovecot", e.Service.ID, "editor selection must persist across requests")
	s.Require().NotNil(e.File)
	_, err = c.PutBuffer(ctx, "listen = *, ::\n")
	s.Require().NoError(err)
	_, err = c.Save(ctx)
	var apiErr *client.Error
	s.Require().ErrorAs(err, &apiErr)
	fmt.Fprintf(b, "Save refused: %d %s\n", apiErr.StatusCode, apiErr.Message)

	content := "protocols = imap lmtp\nlisten = *, ::\n"
	_, err = c.PutBuffer(ctx, content)
	s.Require().NoError(err)
	e, err = c.Save(ctx)
	s.Require().NoError(err)
	fmt.Fprintf(b, "Saved: %v, modified: %v\n", e.Saved, e.Modified)

	f, err := c.File(ctx, "dovecot", "dovecot.conf")
	s.Require().NoError(err)
	fmt.Fprintf(b, "Stored %s:\n%s", f.Path, f.Content)
	goldiff.File(s.T(), b.Bytes(), "testdata", "editor.golden")

	s.Eventually(func() bool {
		o, err := c.Overview(ctx)
		return err == nil && len(o.Recent) > 0 &&
			o.Recent[0].Message == "Configuration /etc/dovecot/dovecot.conf saved (37 B)"
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *IntegrationSuite) TestServiceActions() {
	ctx := context.Background()
	c, err := newClient()
	s.Require().NoError(err)

	svc, err := c.Restart(ctx, "Redis")
	s.Require().NoError(err)
	s.Equal("Running", svc.Label)

	_, err = c.Reload(ctx, "Exim")
	var apiErr *client.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(404, apiErr.StatusCode)

	s.Eventually(func() bool {
		o, err := c.Overview(ctx)
		return err == nil && len(o.Recent) > 0 && o.Recent[0].Message == "Redis service restarted"
	}, 2*time.Second, 10*time.Millisecond)
}

func newClient() (*client.Client, error) {
	return client.New(restBaseURL, client.WithClientOptsTimeout(requestTimeout))
}

func startServer() (*server.Services, func(), error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	clearEnv()
	os.Setenv("MAILMAN_WEB_ADDR", webAddr)
	os.Setenv("MAILMAN_EDITOR_SAVEDELAY", "10ms")
	os.Setenv("MAILMAN_EDITOR_RESTARTDELAY", "10ms")
	os.Setenv("MAILMAN_EDITOR_SUCCESSWINDOW", "1m")
	os.Setenv("MAILMAN_DASHBOARD_REFRESHDELAY", "10ms")
	os.Setenv("MAILMAN_LUA_PATH", "")
	conf, err := config.Process()
	if err != nil {
		return nil, nil, err
	}

	svcs, err := server.FullAssembly(conf)
	if err != nil {
		return nil, nil, err
	}
	svcCtx, svcCancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	svcs.Start(svcCtx, func() { close(ready) })

	select {
	case <-ready:
	case err := <-svcs.Notify():
		svcCancel()
		return nil, nil, err
	case <-time.After(5 * time.Second):
		svcCancel()
		return nil, nil, fmt.Errorf("timed out waiting for %s", webAddr)
	}

	return svcs, func() {
		// Shut everything down.
		svcCancel()
		svcs.Drain()
	}, nil
}

// clearEnv clears environment variables, preserving any that are critical for this OS.
func clearEnv() {
	preserve := make(map[string]string)
	backup := func(k string) {
		preserve[k] = os.Getenv(k)
	}

	// Backup ciritcal env variables.
	if runtime.GOOS == "windows" {
		backup("SYSTEMROOT")
	}

	os.Clearenv()

	for k, v := range preserve {
		os.Setenv(k, v)
	}
}
