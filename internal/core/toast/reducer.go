package toast

import "time"

// Field selects notification fields carried by Update and Upsert actions.
type Field uint16

const (
	FieldKind Field = 1 << iota
	FieldMessage
	FieldCreatedAt
	FieldVisible
	FieldDismissed
	FieldDuration
	FieldPauseDuration
	FieldPosition
	FieldRemoveDelay
	FieldHeight
	FieldIcon
)

const (
	// FieldsShow are the fields reset every time a notification is shown.
	FieldsShow = FieldKind | FieldMessage | FieldCreatedAt | FieldVisible | FieldDismissed | FieldPauseDuration
	// FieldsAll selects every field.
	FieldsAll = FieldIcon<<1 - 1
)

// ActionType tags an Action.
type ActionType int

const (
	ActionAdd ActionType = iota
	ActionUpdate
	ActionUpsert
	ActionDismiss
	ActionRemove
	ActionStartPause
	ActionEndPause
)

var actionNames = [...]string{"add", "update", "upsert", "dismiss", "remove", "start-pause", "end-pause"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Action is a state transition request processed by Reduce.
type Action struct {
	Type ActionType
	// Toast carries the notification for add, update and upsert.
	Toast Notification
	// Fields selects which fields of Toast update and upsert merge.
	Fields Field
	// ID targets dismiss and remove. Empty targets every notification.
	ID string
	// Time is the clock reading for start-pause and end-pause.
	Time time.Time
}

// Add inserts n at the front of the list.
func Add(n Notification) Action {
	return Action{Type: ActionAdd, Toast: n, Fields: FieldsAll}
}

// Update merges the selected fields of n into the notification with n.ID.
func Update(n Notification, fields Field) Action {
	return Action{Type: ActionUpdate, Toast: n, Fields: fields}
}

// Upsert updates the notification with n.ID, or adds n when it is absent.
func Upsert(n Notification, fields Field) Action {
	return Action{Type: ActionUpsert, Toast: n, Fields: fields}
}

// Dismiss marks the notification with id, or every notification when id is
// empty, as dismissed.
func Dismiss(id string) Action {
	return Action{Type: ActionDismiss, ID: id}
}

// Remove deletes the notification with id, or every notification when id is empty.
func Remove(id string) Action {
	return Action{Type: ActionRemove, ID: id}
}

// StartPause suspends countdowns at t.
func StartPause(t time.Time) Action {
	return Action{Type: ActionStartPause, Time: t}
}

// EndPause resumes countdowns at t.
func EndPause(t time.Time) Action {
	return Action{Type: ActionEndPause, Time: t}
}

// Reduce applies a to s and returns the new state. It never mutates s; when
// an action matches nothing the input state is returned as is.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionAdd:
		toasts := make([]Notification, 0, len(s.Toasts)+1)
		toasts = append(toasts, a.Toast)
		toasts = append(toasts, s.Toasts...)
		if limit := s.Settings.Limit; limit > 0 && len(toasts) > limit {
			toasts = toasts[:limit]
		}
		s.Toasts = toasts
		return s

	case ActionUpdate:
		idx := indexOf(s.Toasts, a.Toast.ID)
		if idx < 0 {
			return s
		}
		toasts := clone(s.Toasts)
		toasts[idx] = merge(toasts[idx], a.Toast, a.Fields)
		s.Toasts = toasts
		return s

	case ActionUpsert:
		if indexOf(s.Toasts, a.Toast.ID) >= 0 {
			return Reduce(s, Action{Type: ActionUpdate, Toast: a.Toast, Fields: a.Fields})
		}
		return Reduce(s, Action{Type: ActionAdd, Toast: a.Toast})

	case ActionDismiss:
		if a.ID != "" && indexOf(s.Toasts, a.ID) < 0 {
			return s
		}
		toasts := clone(s.Toasts)
		for i := range toasts {
			if a.ID == "" || toasts[i].ID == a.ID {
				toasts[i].Dismissed = true
				toasts[i].Visible = false
			}
		}
		s.Toasts = toasts
		return s

	case ActionRemove:
		if a.ID == "" {
			s.Toasts = nil
			return s
		}
		idx := indexOf(s.Toasts, a.ID)
		if idx < 0 {
			return s
		}
		toasts := make([]Notification, 0, len(s.Toasts)-1)
		toasts = append(toasts, s.Toasts[:idx]...)
		toasts = append(toasts, s.Toasts[idx+1:]...)
		s.Toasts = toasts
		return s

	case ActionStartPause:
		if s.Paused() {
			return s
		}
		s.PausedAt = a.Time
		return s

	case ActionEndPause:
		if !s.Paused() {
			return s
		}
		elapsed := a.Time.Sub(s.PausedAt)
		toasts := clone(s.Toasts)
		for i := range toasts {
			toasts[i].PauseDuration += elapsed
		}
		s.Toasts = toasts
		s.PausedAt = time.Time{}
		return s
	}

	return s
}

func indexOf(toasts []Notification, id string) int {
	for i, t := range toasts {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(toasts []Notification) []Notification {
	out := make([]Notification, len(toasts))
	copy(out, toasts)
	return out
}

// merge copies the fields of src selected by fields onto dst. The ID is never merged.
func merge(dst, src Notification, fields Field) Notification {
	if fields&FieldKind != 0 {
		dst.Kind = src.Kind
	}
	if fields&FieldMessage != 0 {
		dst.Message = src.Message
	}
	if fields&FieldCreatedAt != 0 {
		dst.CreatedAt = src.CreatedAt
	}
	if fields&FieldVisible != 0 {
		dst.Visible = src.Visible
	}
	if fields&FieldDismissed != 0 {
		dst.Dismissed = src.Dismissed
	}
	if fields&FieldDuration != 0 {
		dst.Duration = src.Duration
	}
	if fields&FieldPauseDuration != 0 {
		dst.PauseDuration = src.PauseDuration
	}
	if fields&FieldPosition != 0 {
		dst.Position = src.Position
	}
	if fields&FieldRemoveDelay != 0 {
		dst.RemoveDelay = src.RemoveDelay
	}
	if fields&FieldHeight != 0 {
		dst.Height = src.Height
	}
	if fields&FieldIcon != 0 {
		dst.Icon = src.Icon
	}
	if dst.Dismissed {
		dst.Visible = false
	}
	return dst
}
