package align

import (
	"connector-align/internal/assembly"
	"connector-align/internal/logging"
	"connector-align/internal/mathutil"
)

// LocatorConfig sizes the search volume in front of each home connector.
type LocatorConfig struct {
	SearchRadius  float64 `mapstructure:"searchRadius"`
	ForwardOffset float64 `mapstructure:"forwardOffset"`
	BoxHalfExtent float64 `mapstructure:"boxHalfExtent"`
	MaxDistance   float64 `mapstructure:"maxDistance"`
}

// DefaultLocatorConfig returns the stock search volume.
func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		SearchRadius:  100,
		ForwardOffset: 20,
		BoxHalfExtent: 20,
		MaxDistance:   1000,
	}
}

// Locator picks the closest valid connector pair.
type Locator struct {
	cfg LocatorConfig
	log logging.Logger
}

// NewLocator fills zero config fields from the defaults.
func NewLocator(cfg LocatorConfig, log logging.Logger) *Locator {
	def := DefaultLocatorConfig()
	if cfg.SearchRadius <= 0 {
		cfg.SearchRadius = def.SearchRadius
	}
	if cfg.ForwardOffset == 0 {
		cfg.ForwardOffset = def.ForwardOffset
	}
	if cfg.BoxHalfExtent <= 0 {
		cfg.BoxHalfExtent = def.BoxHalfExtent
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = def.MaxDistance
	}
	return &Locator{cfg: cfg, log: logging.OrNop(log)}
}

// Config returns the effective configuration.
func (l *Locator) Config() LocatorConfig { return l.cfg }

// SearchBox returns the oriented box a candidate must lie in for home.
func (l *Locator) SearchBox(home Connector) mathutil.OrientedBox {
	anchor := home.Position().Add(home.World.Forward().Scale(l.cfg.ForwardOffset))
	h := l.cfg.BoxHalfExtent
	return mathutil.NewOrientedBox(anchor, mathutil.Vec3{h, h, h}, home.World.Rotation)
}

// Locate returns the closest pair between a functional home connector and a
// functional candidate of the same size class outside the home assembly.
// Equal distances keep the pair found first. inAssembly reports membership
// of the home assembly.
func (l *Locator) Locate(home []Connector, inAssembly func(assembly.GridID) bool, finder Finder) (Pair, bool) {
	var (
		best  Pair
		found bool
	)
	bestDist := l.cfg.MaxDistance

	for _, h := range home {
		hc := h.Class()
		if !hc.Functional {
			continue
		}
		box := l.SearchBox(h)
		sphere := mathutil.Sphere{Center: box.Center, Radius: l.cfg.SearchRadius}

		for _, e := range finder.EntitiesInSphere(sphere) {
			c := e.Connector
			if c == nil || c.ID == h.ID || inAssembly(c.Grid) {
				continue
			}
			if !box.Contains(e.Position) {
				continue
			}
			cc := c.Class()
			if !cc.Functional || cc.Small != hc.Small {
				continue
			}
			d := h.Position().Dist(e.Position)
			if d > bestDist || (found && d == bestDist) {
				continue
			}
			best = Pair{Home: h, Target: *c, Distance: d}
			bestDist = d
			found = true
		}
	}

	if found {
		l.log.Debug("connector pair selected",
			"home", best.Home.Name, "target", best.Target.Name, "distance", best.Distance)
	}
	return best, found
}
