package main

import (
	"testing"
)

func TestResolveSeed(t *testing.T) {
	if got := resolveSeed(42); got != 42 {
		t.Errorf("explicit seed changed: got %d", got)
	}
	if got := resolveSeed(-7); got != -7 {
		t.Errorf("negative explicit seed changed: got %d", got)
	}
	if got := resolveSeed(0); got == 0 {
		t.Error("zero seed should be replaced with a clock value")
	}
}
