package control

import "testing"

func TestConfigStore_IntValue_AcceptsIntInt64AndFloat64(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{
		"a": 1,
		"b": int64(2),
		"c": float64(3),
		"d": "not a number",
	})

	cases := []struct {
		key     string
		want    int
		wantOK  bool
		comment string
	}{
		{"a", 1, true, "plain int"},
		{"b", 2, true, "int64"},
		{"c", 3, true, "float64, as a JSON decoder would hand back"},
		{"d", 0, false, "non-numeric value"},
		{"missing", 0, false, "absent key"},
	}
	for _, tc := range cases {
		got, ok := cs.IntValue(tc.key)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("%s: IntValue(%q) = (%d, %v), want (%d, %v)", tc.comment, tc.key, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestConfigStore_SetConfig_DispatchesReloadSynchronously(t *testing.T) {
	cs := NewConfigStore()
	var seen int
	cs.OnReload(func() {
		seen, _ = cs.IntValue("n")
	})

	cs.SetConfig(map[string]any{"n": 42})
	if seen != 42 {
		t.Fatalf("expected reload listener to observe the new value synchronously, got %d", seen)
	}
}
