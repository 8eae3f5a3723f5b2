package molecule

import "testing"

func TestInjectClick(t *testing.T) {
	s := newTestScene()
	r := interactiveRect("r", 0, 0, 100, 100)
	s.Root().AddChild(r)
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	var clicked bool
	s.OnClick(func(ctx ClickContext) {
		clicked = true
		if ctx.Node != r {
			t.Error("expected the rect node")
		}
	})

	s.InjectClick(50, 50)
	if s.PendingInput() != 2 {
		t.Fatalf("expected 2 queued events, got %d", s.PendingInput())
	}

	// Frame 1: press
	s.processInput()
	if s.PendingInput() != 1 {
		t.Fatalf("expected 1 remaining event after frame 1, got %d", s.PendingInput())
	}
	if clicked {
		t.Error("click should not fire on press frame")
	}

	// Frame 2: release fires the click
	s.processInput()
	if s.PendingInput() != 0 {
		t.Fatalf("expected 0 remaining events after frame 2, got %d", s.PendingInput())
	}
	if !clicked {
		t.Error("click should fire on release frame")
	}
}

func TestInjectQueueOrder(t *testing.T) {
	s := newTestScene()
	s.InjectMove(1, 1)
	s.InjectPress(2, 2)
	s.InjectRelease(3, 3)

	want := []syntheticPointerEvent{
		{x: 1, y: 1},
		{x: 2, y: 2, pressed: true, button: MouseButtonLeft},
		{x: 3, y: 3, button: MouseButtonLeft},
	}
	if len(s.injectQueue) != len(want) {
		t.Fatalf("queue len = %d, want %d", len(s.injectQueue), len(want))
	}
	for i := range want {
		if s.injectQueue[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, s.injectQueue[i], want[i])
		}
	}
}

func TestProcessInjectedInput(t *testing.T) {
	s := newTestScene()
	if s.processInjectedInput() {
		t.Error("empty queue should report no event")
	}
	s.InjectMove(10, 10)
	if !s.processInjectedInput() {
		t.Error("queued event should be consumed")
	}
	if s.pointers[0].lastX != 10 || s.pointers[0].lastY != 10 {
		t.Errorf("pointer at (%v, %v), want (10, 10)", s.pointers[0].lastX, s.pointers[0].lastY)
	}
}

func TestInjectedInputOverridesLivePointer(t *testing.T) {
	s := NewScene()
	s.SetPointerSource(&fakePointer{x: 500, y: 500})
	r := interactiveRect("r", 0, 0, 10, 10)
	entered := false
	r.OnPointerEnter = func(PointerContext) { entered = true }
	s.Root().AddChild(r)

	s.InjectMove(5, 5)
	stepScene(s, 1)
	if !entered {
		t.Error("injected move should be used instead of the live cursor")
	}
}
