package api

import (
	"os"
	"sync"
	"testing"
	"time"
)

func TestProcessMonitor_Initialization(t *testing.T) {
	shutdownCalled := false
	shutdown := func() { shutdownCalled = true }

	monitor := NewProcessMonitor(shutdown)

	if monitor.parentPID != os.Getppid() {
		t.Errorf("parentPID = %d, want %d", monitor.parentPID, os.Getppid())
	}

	if monitor.checkInterval != 2*time.Second {
		t.Errorf("checkInterval = %v, want 2s", monitor.checkInterval)
	}

	if monitor.shutdownFunc == nil {
		t.Error("shutdownFunc was not set")
	}

	if monitor.stopChan == nil {
		t.Error("stopChan was not initialized")
	}

	if shutdownCalled {
		t.Error("shutdown fired during construction")
	}
}

func TestProcessMonitor_GracefulStop(t *testing.T) {
	shutdownCalled := false
	shutdown := func() { shutdownCalled = true }

	monitor := NewProcessMonitor(shutdown)
	monitor.Start()

	time.Sleep(100 * time.Millisecond)
	monitor.Stop()
	time.Sleep(100 * time.Millisecond)

	if shutdownCalled {
		t.Error("Stop() triggered the shutdown callback, it should only return cleanly")
	}
}

func TestProcessMonitor_ShutdownCallback(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	shutdownCalled := false

	shutdown := func() {
		mu.Lock()
		shutdownCalled = true
		mu.Unlock()
		wg.Done()
	}

	monitor := NewProcessMonitor(shutdown)
	monitor.checkInterval = 10 * time.Millisecond
	// An emulator session launched as a subprocess of a debugger frontend
	// should shut itself down the moment that frontend exits; a PID that no
	// process will ever hold stands in for the reparenting the OS performs
	// when the real parent dies.
	monitor.parentPID = 99999

	monitor.Start()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for shutdown callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if !shutdownCalled {
		t.Error("shutdown callback was not invoked after the parent PID changed")
	}
}

func TestProcessMonitor_ShutdownFiresOnceOnParentDeath(t *testing.T) {
	var calls int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(1)

	monitor := NewProcessMonitor(func() {
		mu.Lock()
		calls++
		mu.Unlock()
		wg.Done()
	})
	monitor.checkInterval = 10 * time.Millisecond
	monitor.parentPID = 99999
	monitor.Start()

	select {
	case <-waitDone(&wg):
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for shutdown callback")
	}

	// monitorLoop returns immediately after invoking shutdownFunc, so a
	// second tick never arrives to fire it again.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("shutdownFunc called %d times, want exactly 1", calls)
	}
}

func waitDone(wg *sync.WaitGroup) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func TestProcessMonitor_MultipleStops(t *testing.T) {
	monitor := NewProcessMonitor(func() {})
	monitor.Start()

	time.Sleep(50 * time.Millisecond)

	monitor.Stop()
	monitor.Stop()
	monitor.Stop()
}

func TestProcessMonitor_StopBeforeStart(t *testing.T) {
	monitor := NewProcessMonitor(func() {})
	monitor.Stop()
}

func TestProcessMonitor_ConcurrentStop(t *testing.T) {
	monitor := NewProcessMonitor(func() {})
	monitor.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.Stop()
		}()
	}
	wg.Wait()
}
