package classroom

// Kind tells which Classroom resource a Post came from.
type Kind int

const (
	KindAnnouncement Kind = iota
	KindAssignment
	KindMaterial
)

// String returns the label shown on the dashboard.
func (k Kind) String() string {
	switch k {
	case KindAnnouncement:
		return "Anuncio"
	case KindAssignment:
		return "Tarea"
	case KindMaterial:
		return "Material"
	default:
		return "Desconocido"
	}
}

// Placeholders used when Classroom omits a field.
const (
	PlaceholderText       = "[Sin texto]"
	PlaceholderTitle      = "[Sin título]"
	PlaceholderCourseName = "[Sin nombre]"
)

// Post is one publication in a course stream.
type Post struct {
	Title string
	Kind  Kind
	// UpdateTime is the RFC 3339 timestamp exactly as Classroom returns it.
	UpdateTime string
}
