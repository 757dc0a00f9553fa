package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	s := New[string, int]("pipelines")
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.Name() != "pipelines" {
		t.Errorf("Name() = %q, want %q", s.Name(), "pipelines")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}

func TestStoreGetOrBuild(t *testing.T) {
	s := New[string, *int]("test")
	builds := 0
	build := func() (*int, error) {
		builds++
		v := builds
		return &v, nil
	}

	first, hit, err := s.GetOrBuild("key1", build)
	if err != nil || hit {
		t.Fatalf("first GetOrBuild() = hit %v, err %v", hit, err)
	}
	second, hit, err := s.GetOrBuild("key1", build)
	if err != nil || !hit {
		t.Fatalf("second GetOrBuild() = hit %v, err %v", hit, err)
	}
	if first != second {
		t.Error("expected the identical instance on a cache hit")
	}
	if builds != 1 {
		t.Errorf("expected build called once, got %d", builds)
	}
}

func TestStoreBuildFailureLeavesKeyAbsent(t *testing.T) {
	s := New[string, int]("test")
	errBoom := errors.New("boom")

	_, _, err := s.GetOrBuild("bad", func() (int, error) { return 0, errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("GetOrBuild() error = %v, want %v", err, errBoom)
	}
	if s.Len() != 0 {
		t.Error("failed build must not populate the key")
	}

	v, hit, err := s.GetOrBuild("bad", func() (int, error) { return 9, nil })
	if err != nil || hit || v != 9 {
		t.Errorf("retry GetOrBuild() = %d, %v, %v", v, hit, err)
	}

	st := s.Stats()
	if st.Failures != 1 || st.Builds != 1 {
		t.Errorf("Stats() failures=%d builds=%d, want 1 and 1", st.Failures, st.Builds)
	}
}

func fill(t *testing.T, s *Store[string, int], keys ...string) {
	t.Helper()
	for i, k := range keys {
		if _, _, err := s.GetOrBuild(k, func() (int, error) { return i + 1, nil }); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStoreClear(t *testing.T) {
	s := New[string, int]("test")
	fill(t, s, "a", "b", "c")

	released := 0
	s.Clear(func(v int) { released += v })

	if s.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", s.Len())
	}
	if released != 6 {
		t.Errorf("expected release called for every value, sum %d", released)
	}

	fill(t, s, "d")
	s.Clear(nil)
	if s.Len() != 0 {
		t.Error("Clear(nil) should still empty the store")
	}
}

func TestStoreStats(t *testing.T) {
	s := New[string, int]("test")
	fill(t, s, "key1", "key1", "key1", "key2")

	st := s.Stats()
	if st.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", st.Hits)
	}
	if st.Misses != 2 || st.Builds != 2 || st.Len != 2 {
		t.Errorf("expected 2 misses, builds and entries, got %+v", st)
	}
	if st.HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", st.HitRate)
	}
}

func TestStoreConcurrentGetOrBuild(t *testing.T) {
	s := New[string, *int]("test")
	var wg sync.WaitGroup
	results := make([]*int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, _ := s.GetOrBuild("shared", func() (*int, error) {
				n := i
				return &n, nil
			})
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent GetOrBuild returned different instances")
		}
	}
	if st := s.Stats(); st.Builds != 1 {
		t.Errorf("expected one build, got %d", st.Builds)
	}
}
