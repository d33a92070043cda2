package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
	args  []string
}

func (f *fakeExec) record(name, arg string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, arg)
}

func (f *fakeExec) Add(ctx context.Context, path string) error { f.record("add", path); return nil }
func (f *fakeExec) Remove(path string) error                   { f.record("remove", path); return nil }
func (f *fakeExec) Clear() error                               { f.record("clear", ""); return nil }
func (f *fakeExec) List(ctx context.Context) error             { f.record("list", ""); return nil }
func (f *fakeExec) Upload(ctx context.Context, name string) error {
	f.record("upload", name)
	return nil
}
func (f *fakeExec) CancelUpload() error { f.record("cancel", ""); return nil }
func (f *fakeExec) Scan(ctx context.Context, letter string) error {
	f.record("scan", letter)
	return nil
}
func (f *fakeExec) Watch(ctx context.Context) error   { f.record("watch", ""); return nil }
func (f *fakeExec) Reports(ctx context.Context) error { f.record("reports", ""); return nil }

func TestRunREPL_DispatchAndArgs(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"add /media/a.mp4",
		"add",
		"list",
		"upload summer gig",
		"cancel",
		"scan E",
		"reports",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	want := []string{"add", "list", "upload", "cancel", "scan", "reports"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i, c := range exec.calls {
		if c != want[i] {
			t.Fatalf("call %d: got %q, want %q (all: %v)", i, c, want[i], exec.calls)
		}
	}

	if exec.args[0] != "/media/a.mp4" {
		t.Fatalf("add arg: got %q", exec.args[0])
	}
	if exec.args[2] != "summer gig" {
		t.Fatalf("upload arg: got %q", exec.args[2])
	}
	if exec.args[4] != "E" {
		t.Fatalf("scan arg: got %q", exec.args[4])
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader("list\n"))

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "list" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
