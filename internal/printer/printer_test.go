package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_lines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("saved %d", 3)
	p.Errorf("failed: %s", "boom")
	p.Printf("plain")
	p.KV("sound", true)

	out := buf.String()
	assert.Contains(t, out, "saved 3")
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "plain\n")
	assert.Contains(t, out, "true")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()))
}
