// Package goroutine launches background work with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// SafeGo runs fn on a new goroutine. A panic in fn is caught and logged with
// its stack trace instead of crashing the process; clean completions are
// logged at debug level with the elapsed time so slow background jobs show
// up in traces.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		started := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("background job panicked",
					"job", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				return
			}
			log.Debugw("background job finished",
				"job", name,
				"duration", time.Since(started),
			)
		}()
		fn()
	}()
}
