package file

import (
	"reflect"
	"testing"
)

func files(sizes ...int64) []Metadata {
	out := make([]Metadata, len(sizes))
	for i, s := range sizes {
		out[i] = Metadata{Name: string(rune('a' + i)), Size: s}
	}
	return out
}

func names(g Group) []string {
	out := make([]string, len(g))
	for i, m := range g {
		out[i] = m.Name
	}
	return out
}

func TestPartition_LargestFirstRoundRobin(t *testing.T) {
	// a=10 b=50 c=30 d=40 e=20 -> order by size desc: b d c e a
	groups := Partition(files(10, 50, 30, 40, 20), 2)

	if len(groups) != 2 {
		t.Fatalf("len = %d, want 2", len(groups))
	}
	if got := names(groups[0]); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("group 0 = %v", got)
	}
	if got := names(groups[1]); !reflect.DeepEqual(got, []string{"d", "e"}) {
		t.Errorf("group 1 = %v", got)
	}
	if groups[0].Size() != 90 || groups[1].Size() != 60 {
		t.Errorf("sizes = %d, %d", groups[0].Size(), groups[1].Size())
	}
}

func TestPartition_ExactlyKGroups(t *testing.T) {
	groups := Partition(files(5), 4)
	if len(groups) != 4 {
		t.Fatalf("len = %d, want 4", len(groups))
	}
	for i, g := range groups {
		if g == nil {
			t.Errorf("group %d is nil", i)
		}
	}
	if len(groups[0]) != 1 {
		t.Errorf("group 0 = %v", groups[0])
	}

	empty := Partition(nil, 3)
	if len(empty) != 3 {
		t.Errorf("len = %d, want 3", len(empty))
	}
}

func TestPartition_Deterministic(t *testing.T) {
	in := files(7, 7, 3, 9, 7)
	want := Partition(in, 3)

	reversed := make([]Metadata, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}
	if got := Partition(reversed, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("partition depends on input order:\n%v\n%v", got, want)
	}
}

func TestPartition_EveryFileOnce(t *testing.T) {
	in := files(1, 2, 3, 4, 5, 6, 7)
	seen := map[string]int{}
	for _, g := range Partition(in, 3) {
		for _, m := range g {
			seen[m.Name]++
		}
	}
	if len(seen) != len(in) {
		t.Fatalf("seen %d files, want %d", len(seen), len(in))
	}
	for n, c := range seen {
		if c != 1 {
			t.Errorf("%s assigned %d times", n, c)
		}
	}
}

func TestPartition_NonPositiveK(t *testing.T) {
	groups := Partition(files(1, 2), 0)
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Errorf("groups = %v", groups)
	}
}
