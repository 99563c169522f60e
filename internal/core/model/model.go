package model

// EntityID uniquely identifies an entity within one game instance.
// Ids are assigned sequentially by the registry starting at 1; 0 is never valid.
type EntityID uint64

// Side is the team an entity fights for. The two playing sides are 0 and 1;
// jungle camps and other neutral units belong to SideNeutral.
type Side uint8

const (
	SideBlue    Side = 0
	SideRed     Side = 1
	SideNeutral Side = 2
)

// Opposing returns the other playing side. Calling it on SideNeutral is a
// programming error; it returns SideNeutral unchanged.
func (s Side) Opposing() Side {
	switch s {
	case SideBlue:
		return SideRed
	case SideRed:
		return SideBlue
	}
	return SideNeutral
}

// Kind tags the closed set of entity variants the simulation knows about.
type Kind uint8

const (
	KindUnit Kind = iota
	KindStructure
	KindWard
	KindProjectile
	KindTrap
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindStructure:
		return "structure"
	case KindWard:
		return "ward"
	case KindProjectile:
		return "projectile"
	case KindTrap:
		return "trap"
	}
	return "unknown"
}
