package diag

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLogSinkWritesTimingError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewStdLogSink(log.New(&buf, "", 0))
	sink.TimingError()
	assert.True(t, strings.Contains(buf.String(), "timing error"))
}

func TestNopSinkDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		var s NopSink
		s.TimingError()
	})
}
