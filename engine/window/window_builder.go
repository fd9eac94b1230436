package window

// WindowBuilderOption is a functional option for configuring a videoWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *videoWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *videoWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *videoWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *videoWindow) {
		w.height = height
	}
}

// WithResizable controls whether the user may resize the window. Resizing
// invalidates the fixed-size resource set, so this defaults to false.
//
// Parameters:
//   - resizable: true to allow user resizing
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *videoWindow) {
		w.resizable = resizable
	}
}
