package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/wwm/internal/tiling"
	"github.com/1broseidon/wwm/internal/wm"
)

// InitialOutputs enumerates the monitors at startup. Connected randr outputs
// driven by a CRTC come first; Xinerama heads and finally the root geometry
// are used when randr reports nothing.
func (c *Connection) InitialOutputs() ([]wm.Output, error) {
	return c.scanOutputs(false)
}

// Outputs rescans the monitors after a screen change. With randr present its
// answer is final, so losing every output yields an empty list.
func (c *Connection) Outputs() ([]wm.Output, error) {
	return c.scanOutputs(true)
}

func (c *Connection) scanOutputs(rescan bool) ([]wm.Output, error) {
	var outs []wm.Output
	var err error
	if c.hasRandr {
		outs, err = c.randrOutputs()
		if err != nil {
			c.logger.Warn("randr output scan failed", "error", err)
		}
	}
	return chooseOutputs(outs, err, c.hasRandr, rescan, c.fallbackOutputs)
}

// chooseOutputs settles a scan. Non-empty randr results always win. A rescan
// with randr available never falls back, since the synthetic outputs would
// hide a disconnect of every monitor.
func chooseOutputs(randrOuts []wm.Output, randrErr error, hasRandr, rescan bool, fallback func() ([]wm.Output, error)) ([]wm.Output, error) {
	if hasRandr && randrErr == nil && len(randrOuts) > 0 {
		return randrOuts, nil
	}
	if hasRandr && rescan {
		if randrErr != nil {
			return nil, randrErr
		}
		return nil, nil
	}
	return fallback()
}

func (c *Connection) fallbackOutputs() ([]wm.Output, error) {
	if c.hasXinerama {
		heads, err := xinerama.PhysicalHeads(c.XUtil)
		if err == nil && len(heads) > 0 {
			outs := make([]wm.Output, 0, len(heads))
			for i, h := range heads {
				outs = append(outs, wm.Output{
					Name:     fmt.Sprintf("head-%d", i),
					Primary:  i == 0,
					Geometry: tiling.Rect{X: h.X(), Y: h.Y(), Width: h.Width(), Height: h.Height()},
				})
			}
			return outs, nil
		}
	}
	geom, err := xwindow.RawGeometry(c.XUtil, xproto.Drawable(c.Root))
	if err != nil {
		return nil, fmt.Errorf("root geometry: %w", err)
	}
	return []wm.Output{{
		Name:     "screen",
		Primary:  true,
		Geometry: tiling.Rect{X: geom.X(), Y: geom.Y(), Width: geom.Width(), Height: geom.Height()},
	}}, nil
}

func (c *Connection) randrOutputs() ([]wm.Output, error) {
	conn := c.XUtil.Conn()
	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	seen := make(map[randr.Crtc]bool)
	var outs []wm.Output
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 || seen[info.Crtc] {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil || crtc.Width == 0 || crtc.Height == 0 {
			continue
		}
		// Mirrored outputs share a CRTC and become one monitor.
		seen[info.Crtc] = true
		outs = append(outs, wm.Output{
			Name:    string(info.Name),
			Primary: output == primary,
			Geometry: tiling.Rect{
				X:      int(crtc.X),
				Y:      int(crtc.Y),
				Width:  int(crtc.Width),
				Height: int(crtc.Height),
			},
		})
	}
	return outs, nil
}
