package gui

import (
	"time"

	"github.com/lookbusy1344/gba-emulator/gba"
)

// FrameDuration is the real-time length of one video frame
var FrameDuration = time.Duration(float64(time.Second) / gba.FramesPerSecond)

// FrameTimer paces emulation to the LCD refresh rate and keeps a rolling
// frames-per-second measurement
type FrameTimer struct {
	frameCount int
	frameClock time.Time
	fpsClock   time.Time
	fps        float64
}

// NewFrameTimer starts the clocks
func NewFrameTimer() *FrameTimer {
	now := time.Now()
	return &FrameTimer{frameClock: now, fpsClock: now}
}

// FPS returns the most recent frames-per-second measurement
func (t *FrameTimer) FPS() float64 {
	return t.fps
}

// SlowFrame sleeps away whatever real time remains of the current frame
func (t *FrameTimer) SlowFrame() {
	elapsed := time.Since(t.frameClock)
	if elapsed < FrameDuration {
		time.Sleep(FrameDuration - elapsed)
	}
	t.frameClock = time.Now()
}

// CountFrame updates the FPS measurement once per wall-clock second
func (t *FrameTimer) CountFrame() {
	t.frameCount++
	elapsed := time.Since(t.fpsClock)
	if elapsed >= time.Second {
		t.fps = float64(t.frameCount) / elapsed.Seconds()
		t.frameCount = 0
		t.fpsClock = time.Now()
	}
}
