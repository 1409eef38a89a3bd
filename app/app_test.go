package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"thide/appbar"
	"thide/instance"
	"thide/ipc"
	"thide/taskbar"
)

type fakeStore struct {
	mu     sync.Mutex
	state  uint32
	gets   int
	writes []uint32
}

func (s *fakeStore) Get() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	return s.state
}

func (s *fakeStore) Set(state uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.writes = append(s.writes, state)
}

func (s *fakeStore) snapshot() (uint32, int, []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.gets, append([]uint32(nil), s.writes...)
}

// fakeDesktop tracks visibility for a fixed set of taskbars.
type fakeDesktop struct {
	mu      sync.Mutex
	visible map[taskbar.Handle]bool
	shows   int
}

func newFakeDesktop(handles ...taskbar.Handle) *fakeDesktop {
	d := &fakeDesktop{visible: map[taskbar.Handle]bool{}}
	for _, h := range handles {
		d.visible[h] = true
	}
	return d
}

func (d *fakeDesktop) FindNext(string, taskbar.Handle) taskbar.Handle { return 0 }
func (d *fakeDesktop) OwnerPID(taskbar.Handle) uint32                 { return 0 }

func (d *fakeDesktop) Show(h taskbar.Handle, show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shows++
	if _, ok := d.visible[h]; ok {
		d.visible[h] = show
	}
}

func (d *fakeDesktop) IsVisible(h taskbar.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible[h]
}

// reappear simulates explorer showing a taskbar on its own.
func (d *fakeDesktop) reappear(h taskbar.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible[h] = true
}

func (d *fakeDesktop) commands() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shows
}

type fakeFinder struct {
	mu      sync.Mutex
	handles []taskbar.Handle
	calls   int
}

func (f *fakeFinder) Find() []taskbar.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.handles
}

type fakeTray struct {
	quit chan struct{}
	once sync.Once
	ran  bool
	// user runs after ready, standing in for someone using the menu.
	user func(clicks chan<- ipc.Message, onExit func())
}

func newFakeTray() *fakeTray { return &fakeTray{quit: make(chan struct{})} }

func (t *fakeTray) Run(clicks chan<- ipc.Message, ready func(), onExit func()) error {
	t.ran = true
	ready()
	if t.user != nil {
		t.user(clicks, onExit)
	}
	<-t.quit
	onExit()
	return nil
}

func (t *fakeTray) Quit() { t.once.Do(func() { close(t.quit) }) }

type nopLock struct{ closed bool }

func (l *nopLock) Close() error {
	l.closed = true
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

var testOptions = Options{PollInterval: 5 * time.Millisecond, CacheRefresh: time.Second}

func TestRun_AlreadyRunningTouchesNothing(t *testing.T) {
	store := &fakeStore{}
	desktop := newFakeDesktop(1)
	tray := newFakeTray()
	var warned string
	listened := false

	err := Run(context.Background(), Deps{
		Acquire: func() (io.Closer, error) { return nil, instance.ErrAlreadyRunning },
		Warn:    func(text string) { warned = text },
		Store:   store,
		Desktop: desktop,
		Finder:  &fakeFinder{handles: []taskbar.Handle{1}},
		Tray:    tray,
		Listen:  func(chan<- ipc.Message) error { listened = true; return nil },
	}, testOptions)

	if !errors.Is(err, instance.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if warned == "" {
		t.Fatalf("expected a warning dialog")
	}
	if _, gets, writes := store.snapshot(); gets != 0 || len(writes) != 0 {
		t.Fatalf("AppBar state was touched: %d reads, writes %v", gets, writes)
	}
	if desktop.commands() != 0 {
		t.Fatalf("taskbar visibility was changed")
	}
	if tray.ran || listened {
		t.Fatalf("tray or listener started despite the held lock")
	}
}

func TestRun_AcquireFailure(t *testing.T) {
	store := &fakeStore{}
	boom := errors.New("access denied")
	err := Run(context.Background(), Deps{
		Acquire: func() (io.Closer, error) { return nil, boom },
		Store:   store,
	}, testOptions)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, gets, _ := store.snapshot(); gets != 0 {
		t.Fatalf("AppBar state was read")
	}
}

func TestRun_HideThenQuitRestoresOnce(t *testing.T) {
	store := &fakeStore{state: 0}
	desktop := newFakeDesktop(1, 2)
	lock := &nopLock{}

	err := Run(context.Background(), Deps{
		Acquire: func() (io.Closer, error) { return lock, nil },
		Warn:    func(string) { t.Fatalf("unexpected warning") },
		Store:   store,
		Desktop: desktop,
		Finder:  &fakeFinder{handles: []taskbar.Handle{1, 2}},
		Tray:    newFakeTray(),
		Listen: func(events chan<- ipc.Message) error {
			events <- ipc.Hide
			events <- ipc.Quit
			return nil
		},
	}, testOptions)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	state, _, writes := store.snapshot()
	if state != 0 {
		t.Fatalf("expected original state 0 after quit, got %#x", state)
	}
	restores := 0
	for _, w := range writes {
		if w == 0 {
			restores++
		}
	}
	if restores != 1 {
		t.Fatalf("expected exactly one restore, got writes %v", writes)
	}
	if !desktop.IsVisible(1) || !desktop.IsVisible(2) {
		t.Fatalf("expected taskbars visible after quit")
	}
	if !lock.closed {
		t.Fatalf("expected the single-instance lock to be released")
	}
}

func TestRun_CancelledContextQuits(t *testing.T) {
	store := &fakeStore{state: 0x2}
	desktop := newFakeDesktop(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Deps{
			Acquire: func() (io.Closer, error) { return &nopLock{}, nil },
			Store:   store,
			Desktop: desktop,
			Finder:  &fakeFinder{handles: []taskbar.Handle{1}},
			Tray:    newFakeTray(),
			Listen: func(chan<- ipc.Message) error {
				return errors.New("register class failed")
			},
		}, testOptions)
	}()

	waitFor(t, func() bool { return !desktop.IsVisible(1) })
	if state, _, _ := store.snapshot(); state != 0x3 {
		t.Fatalf("expected auto-hide enforced while running, got %#x", state)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if state, _, _ := store.snapshot(); state != 0x2 {
		t.Fatalf("expected original state restored, got %#x", state)
	}
}

func TestRun_TrayQuitClick(t *testing.T) {
	store := &fakeStore{state: 0x2}
	desktop := newFakeDesktop(1)
	tray := newFakeTray()
	tray.user = func(clicks chan<- ipc.Message, _ func()) {
		clicks <- ipc.Quit
	}

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), Deps{
			Acquire: func() (io.Closer, error) { return &nopLock{}, nil },
			Store:   store,
			Desktop: desktop,
			Finder:  &fakeFinder{handles: []taskbar.Handle{1}},
			Tray:    tray,
			Listen:  func(chan<- ipc.Message) error { return nil },
		}, testOptions)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after the Quit menu item")
	}
	if state, _, _ := store.snapshot(); state != 0x2 {
		t.Fatalf("expected original state restored, got %#x", state)
	}
	if !desktop.IsVisible(1) {
		t.Fatalf("expected taskbar visible after quit")
	}
}

func TestRun_TrayExitRestoresAppBar(t *testing.T) {
	store := &fakeStore{state: 0}
	tray := newFakeTray()
	var atExit uint32
	tray.user = func(clicks chan<- ipc.Message, onExit func()) {
		// Session end: systray runs onExit and the process is killed after it.
		onExit()
		atExit, _, _ = store.snapshot()
		clicks <- ipc.Quit
	}

	err := Run(context.Background(), Deps{
		Acquire: func() (io.Closer, error) { return &nopLock{}, nil },
		Store:   store,
		Desktop: newFakeDesktop(1),
		Finder:  &fakeFinder{handles: []taskbar.Handle{1}},
		Tray:    tray,
		Listen:  func(chan<- ipc.Message) error { return nil },
	}, testOptions)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if atExit != 0 {
		t.Fatalf("AppBar left at %#x when the tray exited; original was 0", atExit)
	}
}

// fileStore persists every write so a crashed child process can be checked.
type fileStore struct{ path string }

func (s fileStore) Get() uint32 { return 0 }

func (s fileStore) Set(state uint32) {
	os.WriteFile(s.path, []byte(strconv.FormatUint(uint64(state), 10)), 0o644)
}

// failingDesktop panics on every Show after the first.
type failingDesktop struct{ shows atomic.Int32 }

func (d *failingDesktop) FindNext(string, taskbar.Handle) taskbar.Handle { return 0 }
func (d *failingDesktop) OwnerPID(taskbar.Handle) uint32                 { return 0 }
func (d *failingDesktop) IsVisible(taskbar.Handle) bool                  { return false }

func (d *failingDesktop) Show(taskbar.Handle, bool) {
	if d.shows.Add(1) > 1 {
		panic("hide failed")
	}
}

const crashStateEnv = "THIDE_TEST_CRASH_STATE"

func TestRun_PanicInEventLoopRestoresAppBar(t *testing.T) {
	if path := os.Getenv(crashStateEnv); path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Run(ctx, Deps{
			Acquire: func() (io.Closer, error) { return &nopLock{}, nil },
			Store:   fileStore{path: path},
			Desktop: &failingDesktop{},
			Finder:  &fakeFinder{handles: []taskbar.Handle{1}},
			Tray:    newFakeTray(),
			Listen: func(events chan<- ipc.Message) error {
				events <- ipc.Hide
				return nil
			},
		}, testOptions)
		return
	}

	path := filepath.Join(t.TempDir(), "appbar")
	cmd := exec.Command(os.Args[0], "-test.run=^TestRun_PanicInEventLoopRestoresAppBar$")
	cmd.Env = append(os.Environ(), crashStateEnv+"="+path)
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected the child to crash, output:\n%s", out)
	}
	if !strings.Contains(string(out), "hide failed") {
		t.Fatalf("child failed for another reason:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read AppBar state: %v", err)
	}
	if got := string(data); got != "0" {
		t.Fatalf("AppBar left at %s after panic in the event loop; original was 0", got)
	}
}

func TestRestoreOnPanic_Repanics(t *testing.T) {
	store := &fakeStore{}
	state := appbar.New(store)
	defer func() {
		r := recover()
		if fmt.Sprint(r) != "boom" {
			t.Fatalf("expected the panic to propagate, got %v", r)
		}
		if s, _, _ := store.snapshot(); s != 0 {
			t.Fatalf("expected original state restored, got %#x", s)
		}
	}()
	func() {
		defer restoreOnPanic(state)
		state.Enforce()
		panic("boom")
	}()
}

func TestController_IntentFollowsLastEvent(t *testing.T) {
	sequences := [][]ipc.Message{
		{ipc.Show},
		{ipc.Hide},
		{ipc.Show, ipc.Hide},
		{ipc.Hide, ipc.Show},
		{ipc.Hide, ipc.Hide, ipc.Show, ipc.Show, ipc.Hide},
		{ipc.Show, ipc.Show, ipc.Hide, ipc.Show},
	}
	for _, seq := range sequences {
		store := &fakeStore{}
		c := NewController(appbar.New(store), newFakeDesktop(1), &fakeFinder{handles: []taskbar.Handle{1}})
		for _, m := range seq {
			if c.Handle(m) {
				t.Fatalf("%v should not quit", m)
			}
		}
		last := seq[len(seq)-1]
		if c.KeepHidden() != (last == ipc.Hide) {
			t.Fatalf("sequence %v: KeepHidden = %v", seq, c.KeepHidden())
		}
		want := Shown
		if last == ipc.Hide {
			want = Hidden
		}
		if c.State() != want {
			t.Fatalf("sequence %v: state %s, want %s", seq, c.State(), want)
		}
	}
}

func TestController_QuitIsTerminal(t *testing.T) {
	store := &fakeStore{}
	c := NewController(appbar.New(store), newFakeDesktop(1), &fakeFinder{handles: []taskbar.Handle{1}})
	c.Handle(ipc.Hide)
	if !c.Handle(ipc.Quit) {
		t.Fatalf("expected quit")
	}
	if c.KeepHidden() || c.State() != Quitting {
		t.Fatalf("unexpected state after quit: hidden=%v state=%s", c.KeepHidden(), c.State())
	}
}

func TestController_EnforceOnlyWhileHidden(t *testing.T) {
	desktop := newFakeDesktop(1)
	bars := &fakeFinder{handles: []taskbar.Handle{1}}
	c := NewController(appbar.New(&fakeStore{}), desktop, bars)

	if c.enforceOnce(bars) {
		t.Fatalf("nothing should be enforced before a hide")
	}

	c.Handle(ipc.Hide)
	if c.enforceOnce(bars) {
		t.Fatalf("already hidden taskbar should not be re-hidden")
	}
	desktop.reappear(1)
	if !c.enforceOnce(bars) || desktop.IsVisible(1) {
		t.Fatalf("reappeared taskbar should be hidden again")
	}

	c.Handle(ipc.Show)
	if c.enforceOnce(bars) || !desktop.IsVisible(1) {
		t.Fatalf("shown taskbar must be left alone")
	}
}

func TestController_ShowHideRoundTripWithinPoll(t *testing.T) {
	desktop := newFakeDesktop(1, 2)
	finder := &fakeFinder{handles: []taskbar.Handle{1, 2}}
	c := NewController(appbar.New(&fakeStore{}), desktop, finder)
	c.Handle(ipc.Hide)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Enforce(ctx, 5*time.Millisecond, taskbar.NewCache(finder, time.Second))

	desktop.reappear(2)
	waitFor(t, func() bool { return !desktop.IsVisible(2) })

	c.Handle(ipc.Show)
	if c.KeepHidden() {
		t.Fatalf("intent should be cleared by show")
	}
	time.Sleep(20 * time.Millisecond)
	if !desktop.IsVisible(1) || !desktop.IsVisible(2) {
		t.Fatalf("poller hid a shown taskbar")
	}

	c.Handle(ipc.Hide)
	desktop.reappear(1)
	waitFor(t, func() bool { return !desktop.IsVisible(1) && !desktop.IsVisible(2) })
}
