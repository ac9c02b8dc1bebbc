package ui

const (
	minZoom = -2
	maxZoom = 3
)

// ViewState holds the presentation toggles of one window. It belongs to a
// single Model and is never shared.
type ViewState struct {
	ShowContent  bool
	ShowComments bool
	Fullscreen   bool
	Zoom         int
}

func DefaultViewState() ViewState {
	return ViewState{ShowContent: true, ShowComments: true}
}

func (v *ViewState) ZoomIn() {
	if v.Zoom < maxZoom {
		v.Zoom++
	}
}

func (v *ViewState) ZoomOut() {
	if v.Zoom > minZoom {
		v.Zoom--
	}
}

// TextWidth is the wrap width for post and comment text at the current zoom.
// Zooming in narrows the column, the terminal equivalent of larger text.
func (v ViewState) TextWidth(termWidth int) int {
	limit := termWidth - 4
	if limit <= 0 {
		limit = 100
	}
	w := min(limit, 80) - v.Zoom*10
	return max(20, min(w, limit))
}
