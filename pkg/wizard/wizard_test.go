package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jhillyerd/goldiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runic/mailman/pkg/config"
)

var testDetails = ServerDetails{
	Hostname:   "mailman.example.com",
	IPAddress:  "192.168.1.100",
	Domain:     "example.com",
	AdminEmail: "admin@example.com",
	Password:   "SecurePassword123#",
}

func TestStepTable(t *testing.T) {
	all := Steps()
	require.Len(t, all, StepCount)
	assert.Equal(t, 12, StepCount)
	for i, s := range all {
		assert.Equal(t, StepKind(i), s.Kind)
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Title)
	}
	assert.Equal(t, "requirements", all[0].ID)
	assert.Equal(t, "user", all[MailUser].ID)
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "unknown", StepKind(99).String())

	// Returned slice is a copy.
	all[0].Title = "changed"
	assert.Equal(t, "System Requirements", Steps()[0].Title)

	_, ok := StepAt(-1)
	assert.False(t, ok)
	_, ok = StepAt(StepCount)
	assert.False(t, ok)
}

func TestNextPrevious(t *testing.T) {
	w := New(testDetails)
	assert.Equal(t, 0, w.Current())
	assert.False(t, w.CanPrevious())

	w.Previous()
	assert.Equal(t, 0, w.Current(), "Previous on first step is a no-op")

	for i := 1; i < StepCount; i++ {
		w.Next()
		assert.Equal(t, i, w.Current())
	}
	assert.False(t, w.CanNext())
	w.Next()
	assert.Equal(t, StepCount-1, w.Current(), "Next on last step is a no-op")

	w.Previous()
	assert.Equal(t, StepCount-2, w.Current())
}

func TestJumpTo(t *testing.T) {
	tests := []struct {
		name    string
		current int
		target  int
		ok      bool
	}{
		{"back to start", 4, 0, true},
		{"same step", 4, 4, true},
		{"immediate next", 4, 5, true},
		{"skip ahead", 4, 6, false},
		{"negative", 4, -1, false},
		{"past end", 11, 12, false},
		{"from start to second", 0, 1, true},
		{"from start to third", 0, 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(testDetails)
			for w.Current() < tc.current {
				w.Next()
			}
			assert.Equal(t, tc.ok, w.JumpTo(tc.target))
			if tc.ok {
				assert.Equal(t, tc.target, w.Current())
			} else {
				assert.Equal(t, tc.current, w.Current())
			}
		})
	}
}

func TestProgressAndLabels(t *testing.T) {
	want := []int{8, 17, 25, 33, 42, 50, 58, 67, 75, 83, 92, 100}
	w := New(testDetails)
	for i := 0; i < StepCount; i++ {
		assert.Equal(t, want[i], w.Progress(), "step %d", i)
		label := "Next"
		if i == StepCount-2 {
			label = "Finish"
		}
		assert.Equal(t, label, w.NextLabel(), "step %d", i)
		w.Next()
	}
}

func TestStepStates(t *testing.T) {
	w := New(testDetails)
	w.Next()
	w.Next()
	assert.Equal(t, StateDone, w.StepState(0))
	assert.Equal(t, StateDone, w.StepState(1))
	assert.Equal(t, StateCurrent, w.StepState(2))
	assert.Equal(t, StateReachable, w.StepState(3))
	assert.Equal(t, StateLocked, w.StepState(4))

	snap := w.Snapshot()
	assert.Equal(t, 2, snap.Current)
	assert.Equal(t, Redis, snap.Step.Kind)
	assert.Equal(t, StateLocked, snap.States[StepCount-1])
	assert.Equal(t, Redis, snap.Panel.Kind())
}

func TestDetails(t *testing.T) {
	d := DefaultServerDetails(config.Wizard{Hostname: "h", IPAddress: "i", Domain: "d",
		AdminEmail: "a", Password: "p"})
	assert.Equal(t, ServerDetails{"h", "i", "d", "a", "p"}, d)

	w := New(d)
	require.NoError(t, w.SetDetail(FieldDomain, "runic.co.za"))
	assert.Equal(t, "runic.co.za", w.Details().Domain)

	// Values are not validated.
	require.NoError(t, w.SetDetail(FieldAdminEmail, "not an email"))
	got, err := w.Details().Get(FieldAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "not an email", got)

	err = w.SetDetail("port", "25")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = d.Get("port")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestContentInterpolation(t *testing.T) {
	d := testDetails
	d.Domain = "runic.co.za"
	d.Hostname = "mailman.runic.co.za"
	d.Password = "s3cret"
	d.AdminEmail = "ops@runic.co.za"

	commands := func(k StepKind) string {
		p, ok := Content(k, d).(*InstallPanel)
		require.True(t, ok, "step %v should be an install panel", k)
		assert.Equal(t, k, p.Kind())
		var all []string
		for _, s := range p.Sections {
			all = append(all, s.Commands...)
		}
		return strings.Join(all, "\n")
	}

	assert.Contains(t, commands(Database), "IDENTIFIED BY 's3cret';")
	assert.Contains(t, commands(Rspamd),
		"sudo rspamadm dkim_keygen -d runic.co.za -s mail -k /var/lib/rspamd/dkim/runic.co.za.mail.key"+
			" > /var/lib/rspamd/dkim/runic.co.za.mail.pub")
	assert.Contains(t, commands(Apache), "sudo a2ensite mailman.runic.co.za.conf")
	assert.Contains(t, commands(SSL),
		"-d mailman.runic.co.za --agree-tos -m ops@runic.co.za --no-eff-email")
	assert.Contains(t, commands(MailUser), "('runic.co.za', 'Runic Mail Domain', 1);")
	assert.Contains(t, commands(MailUser), "sudo doveadm pw -s BLF-CRYPT -p 's3cret'")

	complete, ok := Content(Complete, d).(*CompletePanel)
	require.True(t, ok)
	assert.Equal(t, "https://mailman.runic.co.za/rspamd/", complete.AccessPoints[1].Value)

	req, ok := Content(Requirements, d).(*RequirementsPanel)
	require.True(t, ok)
	require.Len(t, req.Fields, len(FieldNames))
	for i, f := range req.Fields {
		assert.Equal(t, FieldNames[i], f.Name)
		want, err := d.Get(f.Name)
		require.NoError(t, err)
		assert.Equal(t, want, f.Value, "field %q", f.Name)
		assert.NotEmpty(t, f.Label)
	}
	assert.True(t, req.Fields[4].Secret)
	assert.Equal(t, "s3cret", req.Fields[4].Value)
}

func TestContentEveryStep(t *testing.T) {
	for i := 0; i < StepCount; i++ {
		p := Content(StepKind(i), testDetails)
		require.NotNil(t, p)
		assert.Equal(t, StepKind(i), p.Kind())
		if ip, ok := p.(*InstallPanel); ok {
			assert.NotEmpty(t, ip.Alert.Title)
			assert.NotEmpty(t, ip.Sections)
			for _, sec := range ip.Sections {
				assert.NotEmpty(t, sec.Note, "%v section %q has no note", StepKind(i), sec.ID)
				assert.NotEmpty(t, sec.Commands, "%v section %q has no commands", StepKind(i), sec.ID)
			}
		}
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		golden string
		step   int
	}{
		{"requirements.golden", 0},
		{"redis.golden", int(Redis)},
		{"complete.golden", int(Complete)},
	}
	for _, tc := range tests {
		t.Run(tc.golden, func(t *testing.T) {
			w := New(testDetails)
			for w.Current() < tc.step {
				w.Next()
			}
			buf := &bytes.Buffer{}
			require.NoError(t, WriteText(buf, w.Snapshot()))
			goldiff.File(t, buf.Bytes(), "testdata", tc.golden)
		})
	}
}
