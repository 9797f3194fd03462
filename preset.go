package clipper

// PresetNames lists the available presets.
var PresetNames = []string{"circle", "ellipse", "square", "diamond", "triangle", "hexagon", "star", "heart"}

var presets = map[string]Params{
	"circle":   {Shape: Circle, Size: 45, X: 50, Y: 50},
	"ellipse":  {Shape: Ellipse, Size: 60, X: 50, Y: 50},
	"square":   {Shape: Rectangle, Size: 70, X: 50, Y: 50},
	"diamond":  {Shape: Diamond, Size: 60, X: 50, Y: 50},
	"triangle": {Shape: Triangle, Size: 50, X: 50, Y: 50},
	"hexagon":  {Shape: Hexagon, Size: 60, X: 50, Y: 50},
	"star":     {Shape: Star, Size: 70, X: 50, Y: 50},
	"heart":    {Shape: Heart, Size: 60, X: 50, Y: 50},
}

// LookupPreset returns the patch of a named preset. Presets set the shape,
// the size, the anchor and reset the rotation; the custom path and the
// transition are left untouched.
func LookupPreset(name string) (Patch, bool) {
	p, ok := presets[name]
	if !ok {
		return Patch{}, false
	}
	return Patch{}.
		WithShape(p.Shape).
		WithSize(p.Size).
		WithPosition(p.X, p.Y).
		WithRotation(p.Rotation), true
}
