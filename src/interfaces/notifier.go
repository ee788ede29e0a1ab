package interfaces

// -----------------------------------------------------------------------------
// INotifier raises transient user-facing notices.
// -----------------------------------------------------------------------------

type INotifier interface {
	ShowError(msg string)
	ShowWarning(msg string)
	ShowInfo(msg string)
	Clear()
}
