package test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jsbundle/refscan/internal/logger"
)

func AssertEqual(t *testing.T, a interface{}, b interface{}) {
	t.Helper()
	if a != b {
		t.Fatalf("%v != %v", a, b)
	}
}

func AssertEqualWithDiff(t *testing.T, a interface{}, b interface{}) {
	t.Helper()
	if a != b {
		stringA := fmt.Sprintf("%v", a)
		stringB := fmt.Sprintf("%v", b)
		if strings.Contains(stringA, "\n") {
			t.Fatal(Diff(stringB, stringA))
		} else {
			t.Fatalf("%v != %v", a, b)
		}
	}
}

func SourceForTest(contents string) logger.Source {
	return logger.Source{
		Index:      0,
		KeyPath:    logger.Path{Text: "<stdin>"},
		PrettyPath: "<stdin>",
		Contents:   contents,
	}
}
