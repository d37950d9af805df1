package webui_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/server"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
	svcs   *server.Services
}

func newBrowser(t *testing.T, basePath string) *browser {
	t.Helper()
	conf := &config.Root{
		Web:    config.Web{BasePath: basePath, ActivityHistory: 20},
		Editor: config.Editor{SuccessWindow: time.Minute},
		Wizard: config.Wizard{Hostname: "mail.runic.test", Domain: "runic.test"},
	}
	svcs, err := server.FullAssembly(conf)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svcs.Activity.Start(ctx)

	ts := httptest.NewServer(svcs.WebServer.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:      t,
		base:   ts.URL + strings.TrimSuffix(basePath, "/"),
		client: &http.Client{Jar: jar, Timeout: 10 * time.Second},
		svcs:   svcs,
	}
}

func (b *browser) read(resp *http.Response, err error) (int, string) {
	b.t.Helper()
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	return b.read(b.client.Get(b.base + path))
}

// post submits a form, following the redirect back to the page.
func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	return b.read(b.client.PostForm(b.base+path, form))
}

func TestHomePage(t *testing.T) {
	b := newBrowser(t, "")

	code, body := b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Runic Mailman")
	assert.Contains(t, body, "Step 1 of 12: System Requirements")
	assert.Contains(t, body, "<dd>124</dd>")
	assert.Contains(t, body, "15 new emails processed")
	assert.Contains(t, body, "5 minutes ago")
	assert.Contains(t, body, "Runic Mailman v1.0.0")
}

func TestPlaceholderPages(t *testing.T) {
	b := newBrowser(t, "")

	for _, path := range []string{"/users", "/ssl"} {
		code, body := b.get(path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, body, "This section is not available yet.", path)
	}
	code, _ := b.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStaticAssets(t *testing.T) {
	b := newBrowser(t, "/mailman")

	code, body := b.get("/public/mailman.css")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body)

	code, body = b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `href="/mailman/public/mailman.css"`)
	assert.Contains(t, body, `href="/mailman/installation"`)
}

func TestMonitoringActions(t *testing.T) {
	b := newBrowser(t, "")

	code, body := b.get("/monitoring")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "ClamAV")
	assert.Contains(t, body, "bg-red-500")
	assert.Contains(t, body, `title="Restart Rspamd service"`)

	code, body = b.post("/status/refresh", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Service status refreshed")

	_, body = b.post("/status/Postfix/restart", nil)
	assert.Contains(t, body, "Restart requested for Postfix")
	_, body = b.post("/status/Dovecot/reload", nil)
	assert.Contains(t, body, "Reload requested for Dovecot")
	_, body = b.get("/monitoring")
	assert.NotContains(t, body, "Reload requested", "flash is shown once")

	code, _ = b.post("/status/Exim/restart", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWizardPages(t *testing.T) {
	b := newBrowser(t, "")

	code, body := b.get("/installation")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "System Requirements")
	assert.Contains(t, body, `value="mail.runic.test"`)

	_, body = b.post("/installation/details", url.Values{
		"hostname": {"mx.runic.test"},
		"domain":   {"runic.test"},
	})
	assert.Contains(t, body, "Server details saved")
	assert.Contains(t, body, `value="mx.runic.test"`)

	_, body = b.post("/installation/step/4", nil)
	assert.Contains(t, body, "Complete the previous steps first")

	_, body = b.post("/installation/next", nil)
	assert.Contains(t, body, "Database Setup")
	assert.Contains(t, body, "Install MariaDB")
	assert.Contains(t, body, "This installs the MariaDB server and client packages.")

	_, body = b.post("/installation/details", url.Values{"action": {"next"}})
	assert.Contains(t, body, "Redis Setup")

	_, body = b.post("/installation/previous", nil)
	assert.Contains(t, body, "Database Setup")

	_, body = b.post("/installation/step/0", nil)
	assert.Contains(t, body, "Step 1 of 12")

	// Wizard state belongs to the browser session.
	other := newBrowser(t, "")
	_, body = other.get("/installation")
	assert.Contains(t, body, `value="mail.runic.test"`)
}

func TestWizardComplete(t *testing.T) {
	b := newBrowser(t, "")

	var body string
	for i := 0; i < 11; i++ {
		_, body = b.post("/installation/next", nil)
	}
	assert.Contains(t, body, "Installation Complete!")
	assert.Contains(t, body, "https://mail.runic.test/rspamd/")

	_, body = b.get("/")
	assert.Contains(t, body, "Installation complete")
}

func TestConfigEditor(t *testing.T) {
	b := newBrowser(t, "")

	code, body := b.get("/config")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "No file selected")
	assert.Contains(t, body, "main.cf")

	_, body = b.post("/config/file", url.Values{"file": {"main.cf"}})
	assert.Contains(t, body, "/etc/postfix/main.cf")
	assert.Contains(t, body, "smtpd_use_tls=yes")

	_, body = b.post("/config/validate", url.Values{"content": {"biff = no\r\n"}})
	assert.Contains(t, body, "Validation Error")
	assert.Contains(t, body, "Error: Missing required parameter smtpd_tls_cert_file")
	assert.Contains(t, body, "Unsaved changes")

	_, body = b.post("/config/save", url.Values{"content": {"biff = no\r\n"}})
	assert.Contains(t, body, "Validation Error")
	f, err := b.svcs.Catalog.File("postfix", "main.cf")
	require.NoError(t, err)
	assert.Contains(t, f.Content, "smtpd_tls_cert_file=")

	content := "smtpd_tls_cert_file=/etc/ssl/cert.pem\r\nbiff = no\r\n"
	_, body = b.post("/config/save", url.Values{"content": {content}})
	assert.Contains(t, body, "Configuration saved successfully.")
	assert.NotContains(t, body, "Unsaved changes")
	f, err = b.svcs.Catalog.File("postfix", "main.cf")
	require.NoError(t, err)
	assert.Equal(t, "smtpd_tls_cert_file=/etc/ssl/cert.pem\nbiff = no\n", f.Content)

	_, body = b.post("/config/restart", nil)
	assert.Contains(t, body, "Service postfix restarted")

	_, body = b.post("/config/service", url.Values{"service": {"dovecot"}})
	assert.Contains(t, body, "dovecot.conf")
	assert.Contains(t, body, "No file selected")

	code, _ = b.post("/config/service", url.Values{"service": {"exim"}})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestConfigSaveWithoutFile(t *testing.T) {
	b := newBrowser(t, "")

	_, body := b.post("/config/save", nil)
	assert.Contains(t, body, "Select a configuration file first")
}

func TestConfigQuerySelection(t *testing.T) {
	b := newBrowser(t, "")

	code, body := b.get("/config?service=rspamd&file=" + url.QueryEscape(firstFile(t, b, "rspamd")))
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "No file selected")

	code, _ = b.get("/config?service=postfix&file=missing.cf")
	assert.Equal(t, http.StatusNotFound, code)
}

func firstFile(t *testing.T, b *browser, service string) string {
	t.Helper()
	files, err := b.svcs.Catalog.Files(service)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files[0].Name
}
