package metrics_test

import (
	"io"
	"strings"
)

func metricReader(s string) io.Reader {
	return strings.NewReader(strings.TrimLeft(s, "\n"))
}
