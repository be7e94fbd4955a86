package ports

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodaccess-cli/internal/geo"
)

func TestKeyRoundsCoordinates(t *testing.T) {
	a := Key("soil", geo.Point{Lat: 35.12344, Lng: -80.54321})
	b := Key("soil", geo.Point{Lat: 35.12340, Lng: -80.54323})
	c := Key("soil", geo.Point{Lat: 35.12390, Lng: -80.54321})

	// Within ~11m the key collapses; beyond it the key differs.
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	assert.NotEqual(t, a, Key("climate", geo.Point{Lat: 35.12344, Lng: -80.54321}))
}

func TestDoInvokesOncePerKey(t *testing.T) {
	c := NewCache()
	var calls atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Do(c, "k", func() (int, error) {
				calls.Add(1)
				return 7, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestDoCachesErrors(t *testing.T) {
	c := NewCache()
	var calls int

	fn := func() (int, error) {
		calls++
		return 0, eris.New("soil service down")
	}

	_, err := Do(c, "k", fn)
	require.Error(t, err)
	_, err = Do(c, "k", fn)
	require.Error(t, err)

	assert.Equal(t, 1, calls, "failing lookup is not repeated")
}

func TestDoSeparateKeys(t *testing.T) {
	c := NewCache()

	a, err := Do(c, "a", func() (string, error) { return "alpha", nil })
	require.NoError(t, err)
	b, err := Do(c, "b", func() (string, error) { return "beta", nil })
	require.NoError(t, err)

	assert.Equal(t, "alpha", a)
	assert.Equal(t, "beta", b)
	assert.Equal(t, 2, c.Len())
}
