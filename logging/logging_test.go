package logging

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestLevelStrings(t *testing.T) {
	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		serialized := level.String()
		parsed, err := LevelFromString(serialized)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, level)
	}

	parsed, err := LevelFromString("warning")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parsed, test.ShouldEqual, WARN)

	_, err = LevelFromString("not-a-level")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJSONRoundTrip(t *testing.T) {
	type allLevels struct {
		Debug Level
		Info  Level
		Warn  Level
		Error Level
	}

	levels := allLevels{DEBUG, INFO, WARN, ERROR}

	serialized, err := json.Marshal(levels)
	test.That(t, err, test.ShouldBeNil)

	var parsed allLevels
	test.That(t, json.Unmarshal(serialized, &parsed), test.ShouldBeNil)
	test.That(t, parsed, test.ShouldResemble, levels)
}

func TestLoggerLevel(t *testing.T) {
	l := New("core")
	test.That(t, l.Level(), test.ShouldEqual, INFO)
	l.SetLevel(DEBUG)
	test.That(t, l.Level(), test.ShouldEqual, DEBUG)

	sub := l.Named("agent-1")
	test.That(t, sub, test.ShouldNotBeNil)
}
