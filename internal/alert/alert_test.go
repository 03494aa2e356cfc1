package alert

import (
	"errors"
	"testing"

	"github.com/dshills/hotkeytyper/internal/hotkey"
)

type sent struct{ title, msg string }

func recorder(out *[]sent, err error) NotifyFunc {
	return func(title, msg string) error {
		*out = append(*out, sent{title, msg})
		return err
	}
}

type warnLog struct{ n int }

func (l *warnLog) Warn(string, ...any) { l.n++ }

func TestRegistrationAlerts(t *testing.T) {
	tests := []struct {
		name string
		rep  hotkey.Report
		want string
	}{
		{
			name: "all",
			rep:  hotkey.Report{Registered: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		},
		{
			name: "partial",
			rep:  hotkey.Report{Registered: []int{1, 3, 4, 6, 7, 8, 9}, Failed: []int{2, 5}},
			want: "Some hotkeys failed to register: CTRL+SHIFT+2, 5. They may be in use by another application.",
		},
		{
			name: "none",
			rep:  hotkey.Report{Failed: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
			want: "Failed to register global hotkeys. They may be in use by another application.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []sent
			NewWith(recorder(&got, nil), true, nil).Registration(tt.rep)
			if tt.want == "" {
				if len(got) != 0 {
					t.Fatalf("unexpected notification %v", got)
				}
				return
			}
			if len(got) != 1 || got[0].msg != tt.want || got[0].title != Title {
				t.Errorf("got %v", got)
			}
		})
	}
}

func TestDisabledAlerter(t *testing.T) {
	var got []sent
	a := NewWith(recorder(&got, nil), false, nil)
	a.Message("hello")
	if len(got) != 0 || a.Enabled() {
		t.Errorf("disabled alerter sent %v", got)
	}
}

func TestNotifyFailureLogged(t *testing.T) {
	var got []sent
	log := &warnLog{}
	NewWith(recorder(&got, errors.New("no dbus")), true, log).Message("x")
	if log.n != 1 {
		t.Errorf("warnings = %d", log.n)
	}
}
