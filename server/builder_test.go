package server

import (
	"context"
	"crypto/tls"
	"net/netip"
	"reflect"
	"sort"
	"testing"
	"time"
)

var testAddr = netip.MustParseAddrPort("127.0.0.1:3389")

func methodNames(v any) []string {
	typ := reflect.TypeOf(v)
	names := make([]string, 0, typ.NumMethod())
	for i := 0; i < typ.NumMethod(); i++ {
		names = append(names, typ.Method(i).Name)
	}
	sort.Strings(names)
	return names
}

func TestBuilderStatesExposeOnlyNextSteps(t *testing.T) {
	tests := []struct {
		name  string
		state any
		want  []string
	}{
		{"Builder", Builder{}, []string{"WithAddr"}},
		{"WantsSecurity", WantsSecurity{}, []string{"WithNoSecurity", "WithTLS"}},
		{"WantsHandler", WantsHandler{}, []string{"WithInputHandler", "WithNoInput"}},
		{"WantsDisplay", WantsDisplay{}, []string{"WithDisplayHandler", "WithNoDisplay"}},
		{"BuilderDone", BuilderDone{}, []string{"Build", "WithCliprdrFactory"}},
	}
	for _, tt := range tests {
		got := methodNames(tt.state)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s methods = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBuildWithNoStrategies(t *testing.T) {
	srv := NewBuilder().
		WithAddr(testAddr).
		WithNoSecurity().
		WithNoInput().
		WithNoDisplay().
		Build()

	if srv.Addr() != testAddr {
		t.Fatalf("addr = %v", srv.Addr())
	}
	if srv.Security().Kind() != SecurityNone || srv.Security().TLSConfig() != nil {
		t.Fatalf("security = %+v", srv.Security())
	}
	if srv.CliprdrFactory() != nil {
		t.Fatalf("unexpected cliprdr factory")
	}
	if _, ok := srv.Handler().(noopInputHandler); !ok {
		t.Fatalf("handler = %T", srv.Handler())
	}
	srv.Handler().Keyboard(KeyboardEvent{})
	srv.Handler().Mouse(MouseEvent{Kind: MouseButtonDown})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if size := srv.Display().Size(ctx); size != (DesktopSize{}) {
		t.Fatalf("size = %+v", size)
	}
	update, err := srv.Display().GetUpdate(ctx)
	if update != nil || err != context.DeadlineExceeded {
		t.Fatalf("GetUpdate = %v, %v; want it to block until the deadline", update, err)
	}
}

func TestNilStrategiesFallBackToNoop(t *testing.T) {
	srv := NewBuilder().
		WithAddr(testAddr).
		WithNoSecurity().
		WithInputHandler(nil).
		WithDisplayHandler(nil).
		Build()
	if _, ok := srv.Handler().(noopInputHandler); !ok {
		t.Fatalf("handler = %T", srv.Handler())
	}
	if _, ok := srv.Display().(noopDisplay); !ok {
		t.Fatalf("display = %T", srv.Display())
	}
}

func TestBuilderKeepsSuppliedStrategies(t *testing.T) {
	handler := &recordingHandler{}
	display := newScriptedDisplay(DesktopSize{Width: 4, Height: 2})
	srv := NewBuilder().
		WithAddr(testAddr).
		WithNoSecurity().
		WithInputHandler(handler).
		WithDisplayHandler(display).
		Build()
	if srv.Handler() != handler {
		t.Fatalf("handler not kept")
	}
	if srv.Display() != display {
		t.Fatalf("display not kept")
	}
}

func TestWithCliprdrFactoryLastValueWins(t *testing.T) {
	first := NewMemoryClipboard()
	second := NewMemoryClipboard()
	done := NewBuilder().WithAddr(testAddr).WithNoSecurity().WithNoInput().WithNoDisplay()

	srv := done.WithCliprdrFactory(first).WithCliprdrFactory(second).Build()
	if srv.CliprdrFactory() != second {
		t.Fatalf("factory = %v, want the second clipboard", srv.CliprdrFactory())
	}
	if done.Build().CliprdrFactory() != nil {
		t.Fatalf("earlier state was modified")
	}
	if done.WithCliprdrFactory(first).WithCliprdrFactory(nil).Build().CliprdrFactory() != nil {
		t.Fatalf("nil factory should disable the clipboard")
	}
}

func TestWithTLS(t *testing.T) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	srv := NewBuilder().WithAddr(testAddr).WithTLS(cfg).WithNoInput().WithNoDisplay().Build()
	sec := srv.Security()
	if sec.Kind() != SecurityTLS {
		t.Fatalf("kind = %v", sec.Kind())
	}
	if sec.TLSConfig() == cfg || sec.TLSConfig().MinVersion != tls.VersionTLS12 {
		t.Fatalf("expected a clone of the config")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("WithTLS(nil) should panic")
		}
	}()
	NewBuilder().WithAddr(testAddr).WithTLS(nil)
}
