package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/wwm/internal/keys"
)

// GrabKeys replaces all root key grabs with the bindings in table. Every
// binding is grabbed once per lock-modifier combination so NumLock and
// CapsLock do not disable it. The keyboard mapping is reloaded first, which
// makes this the handler for MappingNotify as well.
func (c *Connection) GrabKeys(table *keys.Table) error {
	keyMap, modMap := keybind.MapsGet(c.XUtil)
	keybind.KeyMapSet(c.XUtil, keyMap)
	keybind.ModMapSet(c.XUtil, modMap)
	c.configureIgnoreMods()

	conn := c.XUtil.Conn()
	xproto.UngrabKey(conn, xproto.GrabAny, c.Root, xproto.ModMaskAny)

	var errs []error
	for _, b := range table.Bindings() {
		codes := keybind.StrToKeycodes(c.XUtil, b.Chord.Key)
		if len(codes) == 0 {
			errs = append(errs, fmt.Errorf("key %q: no keycode in the current mapping", b.Sequence))
			continue
		}
		for _, code := range codes {
			for _, ignore := range xevent.IgnoreMods {
				err := xproto.GrabKeyChecked(conn, true, c.Root, b.Chord.Mods|ignore, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
				if err != nil {
					errs = append(errs, fmt.Errorf("grab %s: %w", b.Sequence, err))
					break
				}
			}
		}
	}
	return errors.Join(errs...)
}

// GrabButtons grabs the drag buttons with mods on the root window.
func (c *Connection) GrabButtons(mods uint16, buttons []int) error {
	conn := c.XUtil.Conn()
	xproto.UngrabButton(conn, xproto.ButtonIndexAny, c.Root, xproto.ModMaskAny)

	const mask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion
	var errs []error
	for _, button := range buttons {
		for _, ignore := range xevent.IgnoreMods {
			err := xproto.GrabButtonChecked(conn, false, c.Root, mask,
				xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
				byte(button), mods|ignore).Check()
			if err != nil {
				errs = append(errs, fmt.Errorf("grab button %d: %w", button, err))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Keysym names the unshifted keysym of a keycode, e.g. "a" or "Return".
func (c *Connection) Keysym(code uint8) string {
	sym := keybind.KeysymGet(c.XUtil, xproto.Keycode(code), 0)
	return keybind.KeysymToStr(sym)
}

// ignoreMask is the lock-modifier mask stripped from key and button state.
func (c *Connection) ignoreMask() uint16 {
	return uint16(c.ignore.Load())
}

// configureIgnoreMods computes every combination of CapsLock, NumLock and
// ScrollLock for the current modifier mapping.
func (c *Connection) configureIgnoreMods() {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(c.XUtil, "Num_Lock")
	scrollLock := modMaskForKeysym(c.XUtil, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = lockCombinations(base)

	var all uint16
	for _, m := range base[1:] {
		all |= m
	}
	c.ignore.Store(uint32(all))
}

// lockCombinations returns every subset of base OR'd together, zero first.
func lockCombinations(base []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
