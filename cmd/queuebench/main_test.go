package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	testCases := []struct {
		producers int
		ok        bool
	}{
		{1, true},
		{2, true},
		{4, true},
		{8, true},
		{0, false},
		{3, false},
		{16, false},
	}

	for _, tc := range testCases {
		write, read, err := newRing(tc.producers)
		if !tc.ok {
			assert.ErrorIs(t, err, errRingProducers, "producers=%d", tc.producers)
			continue
		}
		require.NoError(t, err, "producers=%d", tc.producers)
		for pid := 0; pid < tc.producers; pid++ {
			assert.True(t, write(uint64(pid), pid), "producers=%d: write to shard %d", tc.producers, pid)
		}
		read()
	}
}

func TestRunRing_SkipsUnsupportedProducers(t *testing.T) {
	r, err := runRing(config{items: 10, producers: 3, consumers: 1})
	require.NoError(t, err)
	assert.True(t, r.skipped)
}

func TestRunQueues_DeliverEverything(t *testing.T) {
	cfg := config{items: 1000, producers: 2, consumers: 2, chanSize: 16}
	for _, run := range []func(config) (result, error){runBlocking, runPriority, runChannel} {
		r, err := run(cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(cfg.items*cfg.producers), r.popped, r.name)
	}
}
