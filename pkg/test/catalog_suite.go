package test

import (
	"strings"
	"sync"
	"testing"

	"github.com/runic/mailman/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CatalogFactory returns a new store, populated from the built-in seed, for the test suite.
type CatalogFactory func() (store catalog.Store, destroy func(), err error)

// CatalogSuite runs a set of general tests on the provided catalog.Store.
func CatalogSuite(t *testing.T, factory CatalogFactory) {
	testCases := []struct {
		name string
		test func(*testing.T, catalog.Store)
	}{
		{"services", testServices},
		{"files", testFiles},
		{"missing", testMissing},
		{"update", testUpdate},
		{"concurrent update", testConcurrentUpdate},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, destroy, err := factory()
			require.NoError(t, err)
			tc.test(t, store)
			destroy()
		})
	}
}

// testServices verifies the six services are listed in catalogue order.
func testServices(t *testing.T, store catalog.Store) {
	want := []catalog.Service{
		{ID: "postfix", Name: "Postfix"},
		{ID: "dovecot", Name: "Dovecot"},
		{ID: "rspamd", Name: "Rspamd"},
		{ID: "clamav", Name: "ClamAV"},
		{ID: "apache", Name: "Apache"},
		{ID: "fail2ban", Name: "Fail2Ban"},
	}
	assert.Equal(t, want, store.Services())

	svc, err := store.Service("clamav")
	require.NoError(t, err)
	assert.Equal(t, "ClamAV", svc.Name)
}

// testFiles verifies file listing order and content.
func testFiles(t *testing.T, store catalog.Store) {
	files, err := store.Files("postfix")
	require.NoError(t, err)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
		assert.Equal(t, "postfix", f.Service)
	}
	assert.Equal(t, []string{"main.cf", "master.cf", "mysql-virtual-mailbox-domains.cf"}, names)

	f, err := store.File("postfix", "main.cf")
	require.NoError(t, err)
	assert.Equal(t, "/etc/postfix/main.cf", f.Path)
	assert.True(t, strings.HasPrefix(f.Content, "# Postfix main configuration file\n\n"))
	assert.Contains(t, f.Content, "smtpd_tls_cert_file=")
	assert.False(t, strings.HasSuffix(f.Content, "\n"), "content should not gain a trailing newline")

	f, err = store.File("dovecot", "dovecot.conf")
	require.NoError(t, err)
	assert.Contains(t, f.Content, "protocols = imap pop3 lmtp sieve")
}

// testMissing verifies unknown services and files report ErrNotExist.
func testMissing(t *testing.T, store catalog.Store) {
	_, err := store.Service("sendmail")
	assert.ErrorIs(t, err, catalog.ErrNotExist)
	_, err = store.Files("sendmail")
	assert.ErrorIs(t, err, catalog.ErrNotExist)
	_, err = store.File("postfix", "nope.cf")
	assert.ErrorIs(t, err, catalog.ErrNotExist)
	err = store.Update("postfix", "nope.cf", "x")
	assert.ErrorIs(t, err, catalog.ErrNotExist)
	err = store.Update("sendmail", "main.cf", "x")
	assert.ErrorIs(t, err, catalog.ErrNotExist)
}

// testUpdate verifies content replacement only touches the target file.
func testUpdate(t *testing.T, store catalog.Store) {
	before, err := store.File("postfix", "master.cf")
	require.NoError(t, err)

	require.NoError(t, store.Update("postfix", "main.cf", "smtpd_tls_cert_file=/x"))
	f, err := store.File("postfix", "main.cf")
	require.NoError(t, err)
	assert.Equal(t, "smtpd_tls_cert_file=/x", f.Content)
	assert.Equal(t, "/etc/postfix/main.cf", f.Path)

	after, err := store.File("postfix", "master.cf")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Returned values are copies.
	f.Content = "mutated"
	f2, err := store.File("postfix", "main.cf")
	require.NoError(t, err)
	assert.Equal(t, "smtpd_tls_cert_file=/x", f2.Content)
}

// testConcurrentUpdate hammers one file from several goroutines, testing for races.
func testConcurrentUpdate(t *testing.T, store catalog.Store) {
	contents := []string{"alpha", "beta", "whiskey", "tango", "foxtrot"}
	wg := &sync.WaitGroup{}
	errs := make(chan error, len(contents))
	for _, c := range contents {
		wg.Add(1)
		go func(c string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if err := store.Update("rspamd", "worker-proxy.inc", c); err != nil {
					errs <- err
					return
				}
				if _, err := store.File("rspamd", "worker-proxy.inc"); err != nil {
					errs <- err
					return
				}
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	f, err := store.File("rspamd", "worker-proxy.inc")
	require.NoError(t, err)
	assert.Contains(t, contents, f.Content, "last write should win")
}
