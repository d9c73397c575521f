package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"json output", func(o *Options) { o.OutputFormat = "json" }, false},
		{"bad output", func(o *Options) { o.OutputFormat = "toml" }, true},
		{"zero interval", func(o *Options) { o.PollInterval = 0 }, true},
		{"negative timeout", func(o *Options) { o.Timeout = -time.Second }, true},
		{"explicit timeout", func(o *Options) { o.Timeout = 10 * time.Minute }, false},
	}
	for _, tc := range cases {
		opts := NewOptions()
		tc.mutate(opts)
		err := opts.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestDefaults(t *testing.T) {
	opts := NewOptions()
	if opts.PollInterval != 5*time.Second {
		t.Fatalf("default poll interval = %s, want 5s", opts.PollInterval)
	}
	if opts.Timeout != 0 {
		t.Fatalf("default timeout = %s, want 0 (unbounded)", opts.Timeout)
	}
	if opts.OutputFormat != "yaml" {
		t.Fatalf("default output = %q, want yaml", opts.OutputFormat)
	}
}
