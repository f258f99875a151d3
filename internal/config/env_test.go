package config

import "testing"

func TestFloatEnv(t *testing.T) {
	t.Setenv("FACS_TEST_FLOAT", "0.25")
	if got := FloatEnv("FACS_TEST_FLOAT", 0.9); got != 0.25 {
		t.Errorf("set value: got %v, want 0.25", got)
	}
}

func TestFloatEnv_Unset(t *testing.T) {
	if got := FloatEnv("FACS_TEST_FLOAT_UNSET", 0.9); got != 0.9 {
		t.Errorf("unset: got %v, want default 0.9", got)
	}
}

func TestFloatEnv_Malformed(t *testing.T) {
	t.Setenv("FACS_TEST_FLOAT", "fast")
	if got := FloatEnv("FACS_TEST_FLOAT", 0.9); got != 0.9 {
		t.Errorf("malformed: got %v, want default 0.9", got)
	}
}

func TestPortDefault(t *testing.T) {
	t.Setenv("FACS_PORT", "")
	if got := Port(); got != DefaultPort {
		t.Errorf("Port: got %q, want %q", got, DefaultPort)
	}
}
