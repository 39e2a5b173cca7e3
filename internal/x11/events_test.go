package x11

import (
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/wm"
)

const testRoot xproto.Window = 0x100

func testTranslator() *translator {
	return &translator{
		root: testRoot,
		atoms: atoms{
			wmName:          1,
			netWMName:       2,
			wmNormalHints:   3,
			wmTransientFor:  4,
			wmProtocols:     5,
			wmDeleteWindow:  6,
			netWMState:      7,
			netFullscreen:   8,
			netActiveWindow: 9,
			netCurrentDesk:  10,
		},
		ignore: func() uint16 { return keys.Mod2 },
	}
}

func data32(v ...uint32) xproto.ClientMessageDataUnion {
	for len(v) < 5 {
		v = append(v, 0)
	}
	return xproto.ClientMessageDataUnionData32New(v)
}

func TestTranslate(t *testing.T) {
	tr := testTranslator()
	tests := []struct {
		name string
		in   xgb.Event
		want wm.Event
	}{
		{"map request", xproto.MapRequestEvent{Parent: testRoot, Window: 0x20}, wm.MapRequest{Window: 0x20}},
		{"unmap", xproto.UnmapNotifyEvent{Event: testRoot, Window: 0x20}, wm.UnmapNotify{Window: 0x20}},
		{"destroy", xproto.DestroyNotifyEvent{Event: testRoot, Window: 0x20}, wm.DestroyNotify{Window: 0x20}},
		{
			"configure request",
			xproto.ConfigureRequestEvent{
				Window: 0x20, X: -5, Y: 10, Width: 300, Height: 200, BorderWidth: 1,
				ValueMask: xproto.ConfigWindowX | xproto.ConfigWindowWidth | xproto.ConfigWindowStackMode,
				StackMode: xproto.StackModeAbove,
			},
			wm.ConfigureRequest{
				Window: 0x20, Mask: wm.ConfigX | wm.ConfigWidth | wm.ConfigStackMode,
				X: -5, Y: 10, Width: 300, Height: 200, Border: 1, StackMode: xproto.StackModeAbove,
			},
		},
		{"client title", xproto.PropertyNotifyEvent{Window: 0x20, Atom: 2}, wm.PropertyNotify{Window: 0x20, Property: wm.PropTitle}},
		{"root status", xproto.PropertyNotifyEvent{Window: testRoot, Atom: 1}, wm.PropertyNotify{Window: wm.WindowID(testRoot), Property: wm.PropStatus}},
		{"hints", xproto.PropertyNotifyEvent{Window: 0x20, Atom: 3}, wm.PropertyNotify{Window: 0x20, Property: wm.PropHints}},
		{"transient", xproto.PropertyNotifyEvent{Window: 0x20, Atom: 4}, wm.PropertyNotify{Window: 0x20, Property: wm.PropTransient}},
		{
			"fullscreen add",
			xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 7, Data: data32(1, 8, 0)},
			wm.FullscreenRequest{Window: 0x20, Action: wm.FullscreenAdd},
		},
		{
			"fullscreen as second property",
			xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 7, Data: data32(2, 99, 8)},
			wm.FullscreenRequest{Window: 0x20, Action: wm.FullscreenToggle},
		},
		{
			"activate",
			xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 9, Data: data32(2)},
			wm.ActivateRequest{Window: 0x20},
		},
		{
			"pager desktop switch",
			xproto.ClientMessageEvent{Format: 32, Window: testRoot, Type: 10, Data: data32(2)},
			wm.RunAction{Action: "view 3"},
		},
		{
			"key press drops lock modifiers",
			xproto.KeyPressEvent{Detail: 36, State: keys.Mod1 | keys.ModLock | keys.Mod2},
			wm.KeyPress{Mods: keys.Mod1, Code: 36},
		},
		{
			"root button press reports child",
			xproto.ButtonPressEvent{Detail: 1, Event: testRoot, Child: 0x20, RootX: 5, RootY: 6, Time: 99, State: keys.Mod1 | keys.Mod2},
			wm.ButtonPress{Window: 0x20, Button: 1, Mods: keys.Mod1, RootX: 5, RootY: 6, Time: 99},
		},
		{
			"client click reports event window",
			xproto.ButtonPressEvent{Detail: 1, Event: 0x20, Child: 0x0},
			wm.ButtonPress{Window: 0x20, Button: 1},
		},
		{
			"button release",
			xproto.ButtonReleaseEvent{Detail: 3, RootX: 7, RootY: 8, Time: 5},
			wm.ButtonRelease{Button: 3, RootX: 7, RootY: 8, Time: 5},
		},
		{"motion", xproto.MotionNotifyEvent{RootX: 1, RootY: 2, Time: 3}, wm.MotionNotify{RootX: 1, RootY: 2, Time: 3}},
		{
			"normal crossing",
			xproto.EnterNotifyEvent{Event: 0x20, RootX: 4, Mode: xproto.NotifyModeNormal, Detail: xproto.NotifyDetailNonlinear},
			wm.EnterNotify{Window: 0x20, RootX: 4, Normal: true},
		},
		{
			"ungrab crossing",
			xproto.EnterNotifyEvent{Event: 0x20, Mode: xproto.NotifyModeUngrab, Time: 77},
			wm.GrabLost{Time: 77},
		},
		{
			"grab crossing",
			xproto.EnterNotifyEvent{Event: 0x20, Mode: xproto.NotifyModeGrab},
			wm.EnterNotify{Window: 0x20},
		},
		{
			"inferior crossing",
			xproto.EnterNotifyEvent{Event: 0x20, Mode: xproto.NotifyModeNormal, Detail: xproto.NotifyDetailInferior},
			wm.EnterNotify{Window: 0x20},
		},
		{"keyboard mapping", xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard}, wm.KeyboardMapping{}},
		{"screen change", randr.ScreenChangeNotifyEvent{}, wm.ScreenChange{}},
		{"crtc change", randr.NotifyEvent{}, wm.ScreenChange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.translate(tt.in)
			if !ok {
				t.Fatalf("translate(%T) was dropped", tt.in)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("translate() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslate_Drops(t *testing.T) {
	tr := testTranslator()
	tests := []struct {
		name string
		in   xgb.Event
	}{
		{"unrelated property", xproto.PropertyNotifyEvent{Window: 0x20, Atom: 77}},
		{"hints on root", xproto.PropertyNotifyEvent{Window: testRoot, Atom: 3}},
		{"state without fullscreen", xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 7, Data: data32(1, 50, 51)}},
		{"bad fullscreen action", xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 7, Data: data32(5, 8, 0)}},
		{"8-bit message", xproto.ClientMessageEvent{Format: 8, Window: 0x20, Type: 9}},
		{"unknown message", xproto.ClientMessageEvent{Format: 32, Window: 0x20, Type: 55, Data: data32()}},
		{"pointer mapping", xproto.MappingNotifyEvent{Request: xproto.MappingPointer}},
		{"focus in", xproto.FocusInEvent{Event: 0x20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := tr.translate(tt.in); ok {
				t.Fatalf("translate() = %#v, want dropped", got)
			}
		})
	}
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		types []string
		want  wm.WindowType
	}{
		{nil, wm.TypeNormal},
		{[]string{"_NET_WM_WINDOW_TYPE_DIALOG"}, wm.TypeDialog},
		{[]string{"_KDE_NET_WM_WINDOW_TYPE_OVERRIDE", "_NET_WM_WINDOW_TYPE_NORMAL"}, wm.TypeNormal},
		{[]string{"_NET_WM_WINDOW_TYPE_POPUP_MENU"}, wm.TypeMenu},
		{[]string{"_NET_WM_WINDOW_TYPE_DOCK"}, wm.TypeDock},
		{[]string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, wm.TypeDesktop},
		{[]string{"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NORMAL"}, wm.TypeSplash},
	}
	for _, tt := range tests {
		if got := classifyType(tt.types); got != tt.want {
			t.Errorf("classifyType(%v) = %v, want %v", tt.types, got, tt.want)
		}
	}
}

func TestSizeHints(t *testing.T) {
	nh := &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		MinWidth:  100,
		MinHeight: 50,
		MaxWidth:  100,
		MaxHeight: 50,
	}
	got := sizeHints(nh)
	if got != (wm.SizeHints{MinWidth: 100, MinHeight: 50, MaxWidth: 100, MaxHeight: 50}) || !got.Fixed() {
		t.Fatalf("sizeHints() = %+v", got)
	}

	base := sizeHints(&icccm.NormalHints{Flags: icccm.SizeHintPBaseSize, BaseWidth: 20, BaseHeight: 10, MaxWidth: 999})
	if base != (wm.SizeHints{MinWidth: 20, MinHeight: 10}) {
		t.Fatalf("base size fallback = %+v", base)
	}
}

func TestLockCombinations(t *testing.T) {
	got := lockCombinations([]uint16{keys.ModLock, keys.Mod2})
	want := []uint16{0, keys.ModLock, keys.Mod2, keys.ModLock | keys.Mod2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lockCombinations() = %v, want %v", got, want)
	}
}

func TestConfigureMask(t *testing.T) {
	if got := configureMask(0); got != 0 {
		t.Fatalf("configureMask(0) = %#x", got)
	}
	all := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth |
		xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth | xproto.ConfigWindowSibling |
		xproto.ConfigWindowStackMode)
	want := wm.ConfigX | wm.ConfigY | wm.ConfigWidth | wm.ConfigHeight | wm.ConfigBorder |
		wm.ConfigSibling | wm.ConfigStackMode
	if got := configureMask(all); got != want {
		t.Fatalf("configureMask(all) = %#x, want %#x", got, want)
	}
}
