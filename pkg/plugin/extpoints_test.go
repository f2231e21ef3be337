package plugin

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/telisik/telisik/pkg/event"
)

type dummyModule struct{}

func (d dummyModule) Name() string { return "dummy" }

func (d dummyModule) Initialize(b []byte) (err error) {
	return
}

func (d dummyModule) WatchedEvents() []string {
	return []string{event.TypeIPAddr}
}

func (d dummyModule) ProducedEvents() []string {
	return []string{event.TypeMaliciousIP}
}

func (d dummyModule) HandleEvent(ctx context.Context, s Session, evt event.Event) (err error) {
	return
}

func TestExtPointsInterface(t *testing.T) {
	ext1 := RegisterExtension(new(dummyModule), "dummy")
	if !reflect.DeepEqual(ext1, []string{"Module"}) {
		t.Fatal("Cannot register extension")
	}

	var ms = Modules

	m := ms.All()
	m2 := make(map[string]Module)
	if reflect.DeepEqual(m, m2) {
		t.Fatal("Expect a registered extension")
	}
	names := ms.Names()
	sort.Strings(names)
	if !reflect.DeepEqual(names, []string{"dummy"}) {
		t.Fatal("Expect a registered extension")
	}

	c1 := ms.Lookup("dummy")
	if c1 == nil {
		t.Fatal("Cannot lookup extension")
	}
	c2 := ms.Lookup("NA")
	if c2 != nil {
		t.Fatal("Expect c2 equals nil")
	}

	if !ms.Register(c1, "dummy2") {
		t.Fatal("Cannot register new extension")
	}
	if ms.Register(c1, "dummy2") {
		t.Fatal("Expected to fail on registering existing extension")
	}
	if !ms.Unregister("dummy2") {
		t.Fatal("Cannot unregister extension")
	}
	if ms.Unregister("dummy2") {
		t.Fatal("Expected to fail on unregistering non-existent extension")
	}

	ext := UnregisterExtension("dummy")
	if !reflect.DeepEqual(ext, []string{"Module"}) {
		t.Fatal("Cannot unregister extension")
	}
}
