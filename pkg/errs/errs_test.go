package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"network", Network("check", errors.New("dial tcp")), ErrNetwork},
		{"parse", Parse("research", errors.New("bad json")), ErrParse},
		{"resource", ResourceMissing("fonts", fs.ErrNotExist), ErrResourceMissing},
		{"filesystem", Filesystem("mkdir", fs.ErrPermission), ErrFilesystem},
		{"upstream", Upstream("compose", errors.New("503")), ErrUpstreamUnavailable},
		{"config", Config("label", errors.New("overflow")), ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("assemble: %w", ResourceMissing("load font", fs.ErrNotExist))

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected cause to be reachable through the wrapper")
	}
	if !errors.Is(err, ErrResourceMissing) {
		t.Error("expected kind to survive fmt.Errorf wrapping")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("unexpected match against a different kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Filesystem("write /tmp/x.pdf", errors.New("disk full"))
	want := "write /tmp/x.pdf: filesystem error: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("plain")) != nil {
		t.Error("expected nil kind for unclassified error")
	}
}
