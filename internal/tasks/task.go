package tasks

import (
	"context"
	"fmt"
)

type Kind string

const (
	KindExtractDocument Kind = "extract_document"
	KindScreenApplicant Kind = "screen_applicant"

	// KindReextractDocument restarts extraction even from a terminal status.
	KindReextractDocument Kind = "reextract_document"
)

func (k Kind) Valid() bool {
	switch k {
	case KindExtractDocument, KindReextractDocument, KindScreenApplicant:
		return true
	default:
		return false
	}
}

// Task is one unit of background work addressed by the row it owns.
type Task struct {
	Kind Kind `json:"kind"`
	ID   uint `json:"id"`
}

func (t Task) String() string {
	return fmt.Sprintf("%s#%d", t.Kind, t.ID)
}

func ExtractDocument(documentID uint) Task {
	return Task{Kind: KindExtractDocument, ID: documentID}
}

func ReextractDocument(documentID uint) Task {
	return Task{Kind: KindReextractDocument, ID: documentID}
}

func ScreenApplicant(resultID uint) Task {
	return Task{Kind: KindScreenApplicant, ID: resultID}
}

// Dispatcher schedules tasks for background execution. Dispatch must not run
// the task on the caller's goroutine.
type Dispatcher interface {
	Dispatch(ctx context.Context, task Task) error
}
