package server

// User-visible messages
const (
	NoSavedContextsMsg = "No saved contexts"
	SavedMsgFormat     = "Context saved with id: %s"
	RemovedMsgFormat   = "Context item %s removed"
	ListLineFormat     = "%s (%s)"
)

// Tool descriptions
const (
	LeaveOffDescription = "Save the current context, instructions or task state so work can be picked up later. " +
		"Returns the id of the saved item."
	PickUpDescription     = "Load a previously saved context item by id."
	RemoveDescription     = "Delete a saved context item by id."
	ListDescription       = "List saved context items, newest first."
	LoadLatestDescription = "Load the most recently saved context item."
)
