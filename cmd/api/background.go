package main

import (
	"fmt"
)

// background runs fn in its own goroutine. A panic is logged instead of
// taking the server down.
func (app *application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panicked", "error", fmt.Sprintf("%v", err))
			}
		}()

		fn()
	}()
}
