package archtable

import "testing"

func TestEntityCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Entity
		want int
	}{
		{"equal", NewEntity(1, 0), NewEntity(1, 0), 0},
		{"lower index", NewEntity(0, 5), NewEntity(1, 0), -1},
		{"higher index", NewEntity(2, 0), NewEntity(1, 0), 1},
		{"same index, lower version", NewEntity(1, 0), NewEntity(1, 1), -1},
		{"same index, higher version", NewEntity(1, 2), NewEntity(1, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEntityIsZero(t *testing.T) {
	var zero Entity
	if !zero.IsZero() {
		t.Error("uninitialized Entity should be IsZero")
	}
	if NewEntity(0, 0).IsZero() == false {
		t.Error("Entity(0,0) has the zero-value layout, IsZero should still hold")
	}
	if NewEntity(1, 0).IsZero() {
		t.Error("Entity(1,0) should not be IsZero")
	}
}

func TestEntityString(t *testing.T) {
	got := NewEntity(3, 7).String()
	want := "Entity(3,7)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
