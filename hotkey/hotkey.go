package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global hotkey combination and invokes callback when all
// of its keys are held. The callback runs on the hook goroutine; it should
// only post into the event loop.
func Listen(hotkeyConfig string, callback func()) {
	keys := parseHotkey(hotkeyConfig)
	if len(keys) == 0 {
		log.Printf("No valid keys in hotkey configuration %q", hotkeyConfig)
		return
	}

	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}
	var states []keyState
	for _, name := range keys {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			log.Printf("Cannot map key %q to rawcodes, hotkey may not work", name)
			continue
		}
		states = append(states, keyState{name: name, rawcodes: codes})
	}
	if len(states) == 0 {
		return
	}

	log.Printf("Hotkey listener configured for %s", hotkeyConfig)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("gohook.Start() returned nil channel")
			return
		}

		var mu sync.Mutex
		for ev := range evChan {
			if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
				continue
			}

			mu.Lock()
			for i := range states {
				for _, code := range states[i].rawcodes {
					if ev.Rawcode == code {
						states[i].pressed = ev.Kind == gohook.KeyDown
						break
					}
				}
			}

			allPressed := ev.Kind == gohook.KeyDown
			for i := range states {
				if !states[i].pressed {
					allPressed = false
					break
				}
			}
			if allPressed {
				for i := range states {
					states[i].pressed = false
				}
				mu.Unlock()
				log.Printf("Hotkey %s detected", hotkeyConfig)
				if callback != nil {
					callback()
				}
				continue
			}
			mu.Unlock()
		}
	}()
}

// parseHotkey converts a combo like "Ctrl+Alt+Q" to normalized key names.
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "ctrl", "control":
			keys = append(keys, "ctrl")
		case "alt":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// keyNameToRawcodes maps a normalized key name to the platform rawcodes
// gohook reports. Modifier keys map to both left and right variants.
func keyNameToRawcodes(name string) []uint16 {
	switch name {
	case "ctrl":
		return []uint16{162, 163}
	case "alt":
		return []uint16{164, 165}
	case "shift":
		return []uint16{160, 161}
	case "cmd":
		return []uint16{91, 92}
	}
	if len(name) == 1 {
		c := name[0]
		if c >= 'a' && c <= 'z' {
			return []uint16{uint16(c - 'a' + 'A')}
		}
		if c >= '0' && c <= '9' {
			return []uint16{uint16(c)}
		}
	}
	return nil
}
