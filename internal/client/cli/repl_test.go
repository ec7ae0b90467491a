package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) Scan(ctx context.Context, payload string) error { return f.record("scan:" + payload) }
func (f *fakeExec) History(ctx context.Context) error              { return f.record("history") }
func (f *fakeExec) Codes(ctx context.Context) error                { return f.record("codes") }
func (f *fakeExec) Create(ctx context.Context, content string) error {
	return f.record("create:" + content)
}
func (f *fakeExec) Delete(ctx context.Context, code string) error { return f.record("delete:" + code) }
func (f *fakeExec) Refresh(ctx context.Context) error             { return f.record("refresh") }
func (f *fakeExec) Zoom(ctx context.Context, factor string) error { return f.record("zoom:" + factor) }
func (f *fakeExec) Torch(ctx context.Context) error               { return f.record("torch") }
func (f *fakeExec) Start(ctx context.Context) error               { return f.record("start") }
func (f *fakeExec) Stop(ctx context.Context) error                { return f.record("stop") }
func (f *fakeExec) State(ctx context.Context) error               { return f.record("state") }

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	printed := silence(t)

	input := strings.Join([]string{
		"help",
		"scan  upi://pay?pa=a@b&am=1 ",
		"scan hello   world",
		"",
		"history",
		"codes",
		"create some text",
		"delete hello",
		"refresh",
		"zoom 2.5",
		"torch",
		"stop",
		"start",
		"state",
		"foobar",
		"exit",
		"history",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "running" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"scan:upi://pay?pa=a@b&am=1",
		"scan:hello   world",
		"history",
		"codes",
		"create:some text",
		"delete:hello",
		"refresh",
		"zoom:2.5",
		"torch",
		"stop",
		"start",
		"state",
	}, exec.calls)

	assert.Contains(t, *printed, helpText)
	assert.Contains(t, *printed, "Unknown command: foobar")
	assert.Contains(t, *printed, "Bye!")
	assert.Contains(t, *printed, "qrscan (running) > ")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("torch\nstate")))

	assert.Equal(t, []string{"torch", "state"}, exec.calls)
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, cmd, arg string
	}{
		{line: "", cmd: "", arg: ""},
		{line: "   ", cmd: "", arg: ""},
		{line: "state", cmd: "state", arg: ""},
		{line: "scan a  b", cmd: "scan", arg: "a  b"},
		{line: "\tzoom\t3\r\n", cmd: "zoom", arg: "3"},
	}
	for _, tt := range tests {
		cmd, arg := splitCommand(tt.line)
		assert.Equal(t, tt.cmd, cmd, tt.line)
		assert.Equal(t, tt.arg, arg, tt.line)
	}
}
