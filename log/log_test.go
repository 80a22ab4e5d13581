package log

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRandomStringIsRandom(t *testing.T) {
	a := GetLogToken()
	b := GetLogToken()
	if a == b {
		t.Fatal("strings are equal:", a, b)
	}
}

func TestLoglevelFilters(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	SetLoglevel(LOGLEVEL_WARNINGS)
	defer SetLoglevel(LOGLEVEL_WARNINGS)

	Log(LOGLEVEL_ERRORS, "broker gone:", "EOF")
	Log(LOGLEVEL_INFO, "not shown")
	Log(LOGLEVEL_DEBUG, "not shown either")

	if logs.Len() != 1 {
		t.Fatal("expected exactly one entry, got", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "broker gone: EOF" {
		t.Fatal("unexpected message:", msg)
	}
	if IsLoggingEnabled(LOGLEVEL_DEBUG) {
		t.Fatal("debug should be disabled")
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := t.TempDir() + "/logs/bus.log"

	l, err := Setup(Config{Level: "info", Format: "json", Outputs: []string{path}})
	if err != nil {
		t.Fatal(err)
	}
	defer SetLogger(nil)
	defer SetLoglevel(LOGLEVEL_WARNINGS)

	Log(LOGLEVEL_INFO, "serving", 3, "methods")
	l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "serving 3 methods") {
		t.Fatal("log line missing:", string(b))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]int{"debug": LOGLEVEL_DEBUG, "WARN": LOGLEVEL_WARNINGS, "error": LOGLEVEL_ERRORS, "off": LOGLEVEL_NONE, "": LOGLEVEL_INFO}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Error("ParseLevel", in, "=", got, "want", want)
		}
	}
}
