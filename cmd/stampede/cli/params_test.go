// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Socket   string        `flag:"socket" desc:"coordinator socket"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		Workers  int           `flag:"workers" desc:"worker count"`
		Timeout  time.Duration `flag:"timeout" desc:"request timeout"`
		Targets  []string      `flag:"target" desc:"top-level targets"`
		Untagged string        // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--socket", "/run/frontend.sock",
		"-v",
		"--workers", "4",
		"--timeout", "30s",
		"--target", "//app:main,//lib:core",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Socket != "/run/frontend.sock" {
		t.Errorf("Socket = %q", p.Socket)
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Workers != 4 {
		t.Errorf("Workers = %d, want 4", p.Workers)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if len(p.Targets) != 2 || p.Targets[0] != "//app:main" || p.Targets[1] != "//lib:core" {
		t.Errorf("Targets = %v", p.Targets)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Compression string        `flag:"compression" default:"zstd"`
		Workers     int           `flag:"workers" default:"8"`
		Interval    time.Duration `flag:"interval" default:"2s"`
		Wait        bool          `flag:"wait" default:"true"`
		Streams     []string      `flag:"stream" default:"stdout,stderr"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Compression != "zstd" || p.Workers != 8 || p.Interval != 2*time.Second || !p.Wait {
		t.Errorf("defaults not applied: %+v", p)
	}
	if len(p.Streams) != 2 || p.Streams[0] != "stdout" || p.Streams[1] != "stderr" {
		t.Errorf("Streams = %v, want [stdout stderr]", p.Streams)
	}
}

// TestParamsBinder implements FlagBinder. Exported so that reflect can
// call Interface() on it when embedded.
type TestParamsBinder struct {
	Alpha string
	Beta  int
}

func (b *TestParamsBinder) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&b.Alpha, "alpha", "", "alpha value")
	flagSet.IntVar(&b.Beta, "beta", 0, "beta value")
}

func TestBindFlags_NamedFlagBinder(t *testing.T) {
	type params struct {
		Binder TestParamsBinder
		Extra  string `flag:"extra" desc:"extra flag"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--alpha", "hello", "--beta", "7", "--extra", "world"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Binder.Alpha != "hello" || p.Binder.Beta != 7 || p.Extra != "world" {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_EmbeddedFlagBinder(t *testing.T) {
	type params struct {
		TestParamsBinder
		Extra string `flag:"extra" desc:"extra flag"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--alpha", "hello", "--extra", "world"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Alpha != "hello" || p.Extra != "world" {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_EmbeddedStructRecursion(t *testing.T) {
	type inner struct {
		Foo string `flag:"foo" desc:"foo flag"`
		Bar int    `flag:"bar" desc:"bar flag"`
	}
	type params struct {
		inner
		Baz bool `flag:"baz" desc:"baz flag"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--foo", "hello", "--bar", "5", "--baz"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Foo != "hello" || p.Bar != 5 || !p.Baz {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_JSONOutputEmbedding(t *testing.T) {
	type params struct {
		JSONOutput
		Wait bool `flag:"wait"`
	}

	var p params
	flagSet := FlagsFromParams("status", &p)
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON {
		t.Error("--json did not set OutputJSON")
	}
}

func TestBindFlags_Errors(t *testing.T) {
	type params struct {
		Name string `flag:"name"`
	}

	err := BindFlags(params{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "params must be a pointer to a struct") {
		t.Errorf("non-pointer: error = %v", err)
	}

	s := "not a struct"
	if err := BindFlags(&s, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("non-struct: expected error")
	}

	type badDefault struct {
		Count int `flag:"count" default:"not_a_number"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("bad default: expected error")
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("unsupported type: expected error")
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil input, got none")
		}
	}()
	FlagsFromParams("test", nil)
}

func TestBindFlags_PositionalArgsRemain(t *testing.T) {
	type params struct {
		Stream string `flag:"stream" default:"stdout"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--stream", "stderr", "run-1"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	remaining := flagSet.Args()
	if len(remaining) != 1 || remaining[0] != "run-1" {
		t.Errorf("remaining args = %v, want [run-1]", remaining)
	}
	if p.Stream != "stderr" {
		t.Errorf("Stream = %q, want stderr", p.Stream)
	}
}
