package domain

// Platform is the image generator the prompt is written for.
type Platform string

const (
	PlatformMidjourney Platform = "Midjourney"
	PlatformSeedream   Platform = "Seedream"
	PlatformRealRender Platform = "RealRender"
	PlatformNanobanana Platform = "Nanobanana"
)

// Platforms lists the supported platforms in menu order.
var Platforms = []Platform{
	PlatformMidjourney,
	PlatformSeedream,
	PlatformRealRender,
	PlatformNanobanana,
}

// KeepsGeometry reports whether prompts for this platform carry the
// geometry-invariance clause. Nanobanana edits ignore it.
func (p Platform) KeepsGeometry() bool {
	return p != PlatformNanobanana
}

// Angles lists the camera angle phrases in menu order.
var Angles = []string{
	"Slightly imperfect handheld",
	"Centered cinematic",
	"Wide architectural",
	"Close magazine frame",
}

// Clutter levels.
const (
	ClutterNone  = "none"
	ClutterLight = "light"
)

// ClutterLevels lists the clutter choices in menu order.
var ClutterLevels = []string{ClutterNone, ClutterLight}

// IsPlatform reports whether v names a supported platform.
func IsPlatform(v string) bool {
	for _, p := range Platforms {
		if string(p) == v {
			return true
		}
	}
	return false
}

// IsAngle reports whether v is one of the fixed angle phrases.
func IsAngle(v string) bool {
	return contains(Angles, v)
}

// IsClutter reports whether v is a valid clutter level.
func IsClutter(v string) bool {
	return contains(ClutterLevels, v)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
