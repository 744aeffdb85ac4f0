package tasks

import "fmt"

// ProgressUpdate represents a progress event during a publish.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Phase is a step of the publish state machine.
type Phase int

const (
	Authenticating Phase = iota
	ScopeChecking
	Creating
	Verifying
	AddingTracks
	RefreshingToken
	UploadingImage
	Done
)

func (p Phase) String() string {
	switch p {
	case Authenticating:
		return "authenticating"
	case ScopeChecking:
		return "scope_checking"
	case Creating:
		return "creating"
	case Verifying:
		return "verifying"
	case AddingTracks:
		return "adding_tracks"
	case RefreshingToken:
		return "refreshing_token"
	case UploadingImage:
		return "uploading_image"
	case Done:
		return "done"
	default:
		return ""
	}
}

func phaseUpdate(phase Phase, message string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 1, Total: 1, Message: message}
}

func batchUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddingTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Added %d tracks", step, total, count),
	}
}

func refreshUpdate(batch int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshingToken,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Access token rejected on batch %d, refreshing...", batch),
	}
}
