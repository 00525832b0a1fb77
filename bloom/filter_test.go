package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/sitechat/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndMayContain(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.MayContain("9f86d081884c7d65"))

	f.Add("9f86d081884c7d65")

	assert.True(t, f.MayContain("9f86d081884c7d65"))
	assert.False(t, f.MayContain("60303ae22b998861"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("a")
	f.Add("b")
	f.Add("c")
	f.Add("c")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_ZeroArgumentsUseDefaults(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(0, 0)
	f.Add("hash")

	assert.True(t, f.MayContain("hash"))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems = 10000
		fpRate   = 0.01
		probes   = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)
	for i := range numItems {
		f.Add(fmt.Sprintf("added-%d", i))
	}

	var falsePositives int
	for i := range probes {
		if f.MayContain(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}

	// Allow 3x the configured rate for statistical variance.
	rate := float64(falsePositives) / probes
	assert.Less(t, rate, fpRate*3, "false positive rate %.4f too high", rate)
}

func TestFilter_ConcurrentUse(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			f.Add(key)
			_ = f.MayContain(key)
		}()
	}
	wg.Wait()

	for i := range 8 {
		assert.True(t, f.MayContain(fmt.Sprintf("key-%d", i)))
	}
}
