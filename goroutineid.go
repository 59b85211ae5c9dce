package eventloop

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID recovers the running goroutine's numeric id by
// parsing the header line of a single-goroutine stack dump. Go exposes
// no public handle to compare goroutine identity against, which is what
// InEventLoop needs, so this is the only standard-library way to get it:
// no goroutine-id library appears anywhere in the retrieval pack, and
// pulling one in for a single comparison would be a heavier dependency
// than the few lines of runtime.Stack parsing it would replace.
//
// Its only caller is InEventLoop, which backs the worker-only assertions
// and the in-loop/off-loop branches of Execute, Schedule and the
// shutdown-hook methods.
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
