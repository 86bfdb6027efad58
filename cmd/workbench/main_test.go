package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := config{workers: 2, blocks: 10, ratio: 4, progress: time.Second, timeout: time.Second}

	testCases := []struct {
		name   string
		mutate func(*config)
		ok     bool
	}{
		{"Defaults", func(*config) {}, true},
		{"ZeroWork", func(c *config) { c.work = 0 }, true},
		{"ZeroProgress", func(c *config) { c.progress = 0 }, false},
		{"NegativeProgress", func(c *config) { c.progress = -time.Second }, false},
		{"ZeroBlocks", func(c *config) { c.blocks = 0 }, false},
		{"NegativeWork", func(c *config) { c.work = -1 }, false},
		{"ZeroTimeout", func(c *config) { c.timeout = 0 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
