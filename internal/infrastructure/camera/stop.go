package camera

import (
	"errors"
	"time"
)

// closeTimeout сколько Close ждёт остановки цикла чтения.
const closeTimeout = 2 * time.Second

// ErrCloseTimeout цикл чтения не остановился вовремя.
var ErrCloseTimeout = errors.New("camera read loop did not stop in time")

func waitStopped(done <-chan error, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrCloseTimeout
	}
}
