package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	s.Start("search-1", 6)
	st, ok := s.Get("search-1")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, st.Status)
	assert.Equal(t, 6, st.Total)

	s.Update("search-1", 3, "202506", 120, "매매 202506 조회 중")
	st, _ = s.Get("search-1")
	assert.Equal(t, 3, st.Current)
	assert.InDelta(t, 50.0, st.Percent, 0.01)
	assert.Equal(t, "202506", st.CurrentMonth)
	assert.Equal(t, 120, st.RunningCount)

	s.Complete("search-1", 240, "완료")
	st, _ = s.Get("search-1")
	assert.Equal(t, StatusComplete, st.Status)
	assert.InDelta(t, 100.0, st.Percent, 0.01)
	assert.Equal(t, 240, st.RunningCount)

	s.Clear("search-1")
	_, ok = s.Get("search-1")
	assert.False(t, ok)
}

func TestStoreFail(t *testing.T) {
	s := NewStore()
	s.Start("search-2", 3)
	s.Fail("search-2", "upstream unavailable")

	st, ok := s.Get("search-2")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "upstream unavailable", st.Error)
}

func TestStoreUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.Update("missing", 1, "202506", 0, "")
	s.Complete("missing", 0, "")
	s.Fail("missing", "x")

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Start("search-3", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Update("search-3", n, "202506", n, "")
			s.Get("search-3")
		}(i)
	}
	wg.Wait()

	st, ok := s.Get("search-3")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, st.Status)
}
