// Package tray is a thin status collaborator: a system tray icon whose
// tooltip reflects whether a recognition is in flight.
package tray

import (
	"log"
	"sync/atomic"

	"github.com/getlantern/systray"
)

type Config struct {
	Title   string
	Tooltip string
	OnExit  func()
}

var ready atomic.Bool

// Run starts the tray loop. It blocks; call from a dedicated goroutine.
func Run(cfg Config) {
	systray.Run(func() {
		systray.SetTitle(cfg.Title)
		systray.SetTooltip(cfg.Tooltip)
		ready.Store(true)

		mQuit := systray.AddMenuItem("Quit", "Quit the application")
		go func() {
			<-mQuit.ClickedCh
			if cfg.OnExit != nil {
				cfg.OnExit()
			}
			systray.Quit()
		}()
	}, func() {
		ready.Store(false)
		log.Printf("Tray exited")
	})
}

// UpdateTooltip changes the tooltip if the tray is running; otherwise no-op.
func UpdateTooltip(tt string) {
	if !ready.Load() {
		return
	}
	systray.SetTooltip(tt)
}

// Quit stops the tray loop.
func Quit() {
	if ready.Load() {
		systray.Quit()
	}
}
