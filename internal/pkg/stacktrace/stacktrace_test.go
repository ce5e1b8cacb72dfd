package stacktrace

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

const dump = `goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/isaback/internal/pkg/jobqueue.(*Queue).run.func1()
	/app/internal/pkg/jobqueue/queue.go:251 +0x85
panic({0x9c3b20?, 0xc0001a2f40?})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/isaback/internal/notification/usecase.(*Usecase).SendMailError(...)
	/app/internal/notification/usecase/send.go:31
`

func TestInternalPaths(t *testing.T) {
	got := InternalPaths([]byte(dump))

	assert.Equal(t, []string{
		"internal/pkg/jobqueue/queue.go:251",
		"internal/notification/usecase/send.go:31",
	}, got)
}

func TestAttr(t *testing.T) {
	assert.Equal(t, slog.KindAny, attr([]byte(dump)).Value.Kind())

	raw := "goroutine 1 [running]:\nmain.main()\n\t/tmp/main.go:3\n"
	a := attr([]byte(raw))
	assert.Equal(t, "stack", a.Key)
	assert.Equal(t, raw, a.Value.String())
}
