package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jabolina/go-raymond/pkg/raymond/definition"
)

type fakeDispatcher struct {
	initialized  []string
	asked        [][]string
	killed       [][]string
	askRandomN   int
	killRandomN  int
	canceledAsk  int
	canceledKill int
}

func (f *fakeDispatcher) Initialize(name string) {
	f.initialized = append(f.initialized, name)
}

func (f *fakeDispatcher) Ask(names ...string) {
	f.asked = append(f.asked, names)
}

func (f *fakeDispatcher) Kill(names ...string) {
	f.killed = append(f.killed, names)
}

func (f *fakeDispatcher) AskRandom() context.CancelFunc {
	f.askRandomN++
	return func() { f.canceledAsk++ }
}

func (f *fakeDispatcher) KillRandom() context.CancelFunc {
	f.killRandomN++
	return func() { f.canceledKill++ }
}

func run(t *testing.T, script string, dispatcher *fakeDispatcher) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(strings.NewReader(script), &out, dispatcher, definition.NewDefaultLogger())
	sh.Run()
	return out.String()
}

func TestShell_InitDispatchesToNamedNode(t *testing.T) {
	d := &fakeDispatcher{}
	run(t, "init 0\nexit\n", d)

	if len(d.initialized) != 1 || d.initialized[0] != "0" {
		t.Fatalf("expected init to dispatch to node 0, got %v", d.initialized)
	}
}

func TestShell_AskMultipleNames(t *testing.T) {
	d := &fakeDispatcher{}
	run(t, "ask 1 2 3\nexit\n", d)

	if len(d.asked) != 1 {
		t.Fatalf("expected exactly one ask dispatch, got %d", len(d.asked))
	}
	if strings.Join(d.asked[0], ",") != "1,2,3" {
		t.Errorf("expected ask to dispatch to 1,2,3, got %v", d.asked[0])
	}
}

func TestShell_AskRandomStartsBackgroundLoop(t *testing.T) {
	d := &fakeDispatcher{}
	run(t, "ask random\nexit\n", d)

	if d.askRandomN != 1 {
		t.Fatalf("expected ask random to start exactly one loop, got %d", d.askRandomN)
	}
	if d.canceledAsk != 1 {
		t.Errorf("expected exit to cancel the ask random loop, got %d cancellations", d.canceledAsk)
	}
}

func TestShell_KillRandomStartsBackgroundLoop(t *testing.T) {
	d := &fakeDispatcher{}
	run(t, "kill random\nexit\n", d)

	if d.killRandomN != 1 {
		t.Fatalf("expected kill random to start exactly one loop, got %d", d.killRandomN)
	}
}

func TestShell_MalformedCommandPrintsUsageAndContinues(t *testing.T) {
	d := &fakeDispatcher{}
	out := run(t, "init\nbogus\ninit 0\nexit\n", d)

	if !strings.Contains(out, "usage:") {
		t.Errorf("expected usage to be printed for a malformed command, got %q", out)
	}
	if len(d.initialized) != 1 {
		t.Errorf("expected the shell to keep processing after a malformed command, got %v", d.initialized)
	}
}

func TestShell_EOFExitsCleanly(t *testing.T) {
	d := &fakeDispatcher{}
	code := func() int {
		var out bytes.Buffer
		sh := New(strings.NewReader("init 0\n"), &out, d, definition.NewDefaultLogger())
		return sh.Run()
	}()

	if code != 0 {
		t.Errorf("expected exit code 0 on EOF, got %d", code)
	}
}
