package sshpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "example.com|deploy", key("example.com", "deploy"))
}

func TestPoolSizeStartsEmpty(t *testing.T) {
	p := New(nil, Config{User: "deploy", KeyPath: "/nonexistent", IdleTTL: time.Second})
	assert.Equal(t, 0, p.Size())
}

func TestSweepNoEntriesIsNoop(t *testing.T) {
	p := New(nil, Config{User: "deploy", KeyPath: "/nonexistent"})
	p.Sweep()
	assert.Equal(t, 0, p.Size())
}
