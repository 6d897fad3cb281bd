package debugger

import (
	"testing"
)

func TestBreakpointManager_AddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}

	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}

	if bp.Address != 0x1000 {
		t.Errorf("Expected address 0x1000, got 0x%08X", bp.Address)
	}

	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}

	if bp.Temporary {
		t.Error("Breakpoint should not be temporary")
	}

	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

// Every RV32 instruction occupies a 4-byte word and PC only ever takes
// word-aligned values, so an address that isn't a multiple of 4 can never
// be reached by the fetch stage.
func TestBreakpointManager_AddBreakpoint_RejectsMisaligned(t *testing.T) {
	bm := NewBreakpointManager()

	for _, addr := range []uint32{0x1001, 0x1002, 0x1003, 0xFFFFFFFD} {
		bp, err := bm.AddBreakpoint(addr, false, "")
		if err == nil {
			t.Errorf("AddBreakpoint(0x%08X) = %+v, nil; want error", addr, bp)
		}
		if bp != nil {
			t.Errorf("AddBreakpoint(0x%08X) returned non-nil breakpoint on error", addr)
		}
	}

	if bm.Count() != 0 {
		t.Errorf("misaligned addresses should not be recorded, got %d breakpoints", bm.Count())
	}
}

func TestBreakpointManager_AddBreakpoint_AcceptsWordAligned(t *testing.T) {
	bm := NewBreakpointManager()

	for _, addr := range []uint32{0x0, 0x4, 0x1000, 0xFFFFFFFC} {
		if _, err := bm.AddBreakpoint(addr, false, ""); err != nil {
			t.Errorf("AddBreakpoint(0x%08X) returned unexpected error: %v", addr, err)
		}
	}

	if bm.Count() != 4 {
		t.Errorf("expected 4 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	bp2, err := bm.AddBreakpoint(0x2000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if bp1.ID == bp2.ID {
		t.Error("Breakpoint IDs should be unique")
	}

	if bm.Count() != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddDuplicate(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	bp2, err := bm.AddBreakpoint(0x1000, false, "x10 == 5")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	// Adding to same address should update existing breakpoint.
	if bp1.ID != bp2.ID {
		t.Error("Duplicate address should update existing breakpoint")
	}

	if bp2.Condition != "x10 == 5" {
		t.Error("Condition not updated")
	}
}

func TestBreakpointManager_DeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("DeleteBreakpoint failed: %v", err)
	}

	if bm.GetBreakpoint(0x1000) != nil {
		t.Error("Breakpoint not deleted")
	}

	// Try to delete non-existent breakpoint.
	if err := bm.DeleteBreakpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent breakpoint")
	}
}

func TestBreakpointManager_DeleteBreakpointAt(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if err := bm.DeleteBreakpointAt(0x1000); err != nil {
		t.Fatalf("DeleteBreakpointAt failed: %v", err)
	}

	if bm.HasBreakpoint(0x1000) {
		t.Error("breakpoint should be gone after DeleteBreakpointAt")
	}

	if err := bm.DeleteBreakpointAt(0x2000); err == nil {
		t.Error("expected error deleting breakpoint at address with none set")
	}
}

func TestBreakpointManager_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	// Disable.
	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("DisableBreakpoint failed: %v", err)
	}

	if bp.Enabled {
		t.Error("Breakpoint not disabled")
	}

	// Enable.
	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("EnableBreakpoint failed: %v", err)
	}

	if !bp.Enabled {
		t.Error("Breakpoint not enabled")
	}
}

func TestBreakpointManager_GetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	if _, err := bm.AddBreakpoint(0x2000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	bp := bm.GetBreakpoint(0x1000)
	if bp == nil {
		t.Fatal("GetBreakpoint returned nil")
	}

	if bp.Address != 0x1000 {
		t.Errorf("Wrong breakpoint returned: got 0x%08X, want 0x1000", bp.Address)
	}

	bp = bm.GetBreakpoint(0x3000)
	if bp != nil {
		t.Error("GetBreakpoint should return nil for non-existent address")
	}
}

func TestBreakpointManager_GetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	bp2, err := bm.AddBreakpoint(0x2000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	found := bm.GetBreakpointByID(bp1.ID)
	if found != bp1 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}

	found = bm.GetBreakpointByID(bp2.ID)
	if found != bp2 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}

	found = bm.GetBreakpointByID(999)
	if found != nil {
		t.Error("GetBreakpointByID should return nil for non-existent ID")
	}
}

func TestBreakpointManager_GetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()

	for _, addr := range []uint32{0x1000, 0x2000, 0x3000} {
		if _, err := bm.AddBreakpoint(addr, false, ""); err != nil {
			t.Fatalf("AddBreakpoint(0x%08X) failed: %v", addr, err)
		}
	}

	all := bm.GetAllBreakpoints()

	if len(all) != 3 {
		t.Errorf("Expected 3 breakpoints, got %d", len(all))
	}
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}
	if _, err := bm.AddBreakpoint(0x2000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	bm.Clear()

	if bm.Count() != 0 {
		t.Errorf("Expected 0 breakpoints after clear, got %d", bm.Count())
	}
}

func TestBreakpointManager_HasBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if !bm.HasBreakpoint(0x1000) {
		t.Error("HasBreakpoint returned false for existing breakpoint")
	}

	if bm.HasBreakpoint(0x2000) {
		t.Error("HasBreakpoint returned true for non-existent breakpoint")
	}
}

func TestBreakpoint_Temporary(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x1000, true, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if !bp.Temporary {
		t.Error("Breakpoint should be temporary")
	}
}

func TestBreakpoint_Condition(t *testing.T) {
	bm := NewBreakpointManager()

	condition := "x10 == 42"
	bp, err := bm.AddBreakpoint(0x1000, false, condition)
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if bp.Condition != condition {
		t.Errorf("Condition = %s, want %s", bp.Condition, condition)
	}
}

func TestBreakpoint_HitCount(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x1000, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if bp.HitCount != 0 {
		t.Errorf("Initial hit count = %d, want 0", bp.HitCount)
	}

	bp.HitCount++
	bp.HitCount++

	if bp.HitCount != 2 {
		t.Errorf("Hit count = %d, want 2", bp.HitCount)
	}
}

func TestBreakpointManager_ProcessHit_DeletesTemporary(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, true, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	hit := bm.ProcessHit(0x1000)
	if hit == nil {
		t.Fatal("ProcessHit returned nil for armed breakpoint")
	}
	if hit.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", hit.HitCount)
	}

	if bm.HasBreakpoint(0x1000) {
		t.Error("temporary breakpoint should be removed after its first hit")
	}

	if bm.ProcessHit(0x1000) != nil {
		t.Error("ProcessHit should return nil once the temporary breakpoint is gone")
	}
}

func TestBreakpointManager_ProcessHit_KeepsPersistent(t *testing.T) {
	bm := NewBreakpointManager()

	if _, err := bm.AddBreakpoint(0x1000, false, ""); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	bm.ProcessHit(0x1000)
	bm.ProcessHit(0x1000)

	bp := bm.GetBreakpoint(0x1000)
	if bp == nil {
		t.Fatal("persistent breakpoint should survive hits")
	}
	if bp.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", bp.HitCount)
	}
}
