package gui

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/lookbusy1344/gba-emulator/gba"
)

// App is the desktop display window: the frame buffer blitted into a
// scaled image, a small toolbar and a status line
type App struct {
	Machine *gba.GameBoyAdvance
	App     fyne.App
	Window  fyne.Window

	Screen      *canvas.Image
	StatusLabel *widget.Label
	Toolbar     *widget.Toolbar

	frame   *image.RGBA
	paused  atomic.Bool
	stopped atomic.Bool
	step    chan struct{}
	timer   *FrameTimer
}

// Run opens the display window and drives the machine until the window
// closes
func Run(machine *gba.GameBoyAdvance, scale int) error {
	gui := newApp(machine, scale)
	go gui.emulationLoop()
	gui.Window.ShowAndRun()
	gui.stopped.Store(true)
	return nil
}

// newApp builds the window and its widgets
func newApp(machine *gba.GameBoyAdvance, scale int) *App {
	if scale < 1 {
		scale = 1
	}
	fyneApp := app.New()
	window := fyneApp.NewWindow("GBA Emulator - " + machine.Cartridge().Header().GameTitle)

	gui := &App{
		Machine: machine,
		App:     fyneApp,
		Window:  window,
		frame:   image.NewRGBA(image.Rect(0, 0, gba.ViewportWidth, gba.ViewportHeight)),
		step:    make(chan struct{}, 1),
		timer:   NewFrameTimer(),
	}

	gui.Screen = canvas.NewImageFromImage(gui.frame)
	gui.Screen.FillMode = canvas.ImageFillContain
	gui.Screen.ScaleMode = canvas.ImageScalePixels
	gui.Screen.SetMinSize(fyne.NewSize(
		float32(gba.ViewportWidth*scale), float32(gba.ViewportHeight*scale)))

	gui.StatusLabel = widget.NewLabel("running")
	gui.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), func() {
			gui.paused.Store(false)
		}),
		widget.NewToolbarAction(theme.MediaPauseIcon(), func() {
			gui.paused.Store(true)
		}),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() {
			select {
			case gui.step <- struct{}{}:
			default:
			}
		}),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			gui.Machine.CPU().Reset()
		}),
	)

	window.SetContent(container.NewBorder(gui.Toolbar, gui.StatusLabel, nil, nil, gui.Screen))
	return gui
}

// emulationLoop runs frames at LCD speed and hands the rendered buffer to
// the UI thread
func (g *App) emulationLoop() {
	var overshoot uint64
	for !g.stopped.Load() {
		if g.paused.Load() {
			select {
			case <-g.step:
				g.Machine.Cycle()
				g.presentFrame("paused")
			default:
			}
			g.timer.SlowFrame()
			continue
		}

		overshoot = g.Machine.RunFrame(overshoot)
		g.presentFrame(fmt.Sprintf("%.1f fps", g.timer.FPS()))
		g.timer.CountFrame()
		g.timer.SlowFrame()
	}
}

// presentFrame copies the frame buffer into the canvas image on the UI
// thread
func (g *App) presentFrame(status string) {
	buffer := g.Machine.FrameBuffer()
	for y := 0; y < gba.ViewportHeight; y++ {
		for x := 0; x < gba.ViewportWidth; x++ {
			pixel := buffer[y*gba.ViewportWidth+x]
			g.frame.SetRGBA(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 0xFF,
			})
		}
	}
	fyne.Do(func() {
		g.Screen.Refresh()
		g.StatusLabel.SetText(status)
	})
}
