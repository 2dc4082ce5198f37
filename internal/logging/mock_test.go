package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewMockLogger()

	root.WithField(FieldActor, "Nathan").Info("task recorded", F(FieldAmount, "7"))
	root.WithError(errors.New("boom")).Warn("refresh failed")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldActor, Value: "Nathan"}, {Key: FieldAmount, Value: "7"}}, entries[0].Fields)
	assert.EqualError(t, entries[1].Error, "boom")

	assert.True(t, root.HasEntry("WARN", "refresh failed"))
	assert.Len(t, root.GetEntriesByLevel("INFO"), 1)

	root.Clear()
	assert.Empty(t, root.GetEntries())
}

func TestMockLogger_ZeroValueIsUsable(t *testing.T) {
	var m MockLogger
	m.Debug("hello")
	m.Fatalf("bad %s", "thing")
	assert.True(t, m.HasEntry("FATAL", "bad thing"))
	require.NoError(t, m.SetLevel("debug"))
	assert.Equal(t, "debug", m.Level())
}
