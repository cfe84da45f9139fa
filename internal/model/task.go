package model

import "fmt"

type Action string

const (
	ActionBook         Action = "book"
	ActionCancelByID   Action = "cancel_by_id"
	ActionCancelByName Action = "cancel_by_name"
)

// Task мутирующая операция, которую применяет только воркер.
// Реализации: BookTask, CancelByIDTask, CancelByNameTask.
type Task interface {
	Action() Action
	fmt.Stringer
}

// BookTask бронирование слота
type BookTask struct {
	SlotID  int64
	Name    string
	Service string
}

func (BookTask) Action() Action { return ActionBook }

func (t BookTask) String() string {
	return fmt.Sprintf("book slot=%d name=%q service=%q", t.SlotID, t.Name, t.Service)
}

// CancelByIDTask отмена брони по ID слота
type CancelByIDTask struct {
	SlotID int64
}

func (CancelByIDTask) Action() Action { return ActionCancelByID }

func (t CancelByIDTask) String() string {
	return fmt.Sprintf("cancel_by_id slot=%d", t.SlotID)
}

// CancelByNameTask отмена всех броней клиента
type CancelByNameTask struct {
	Name string
}

func (CancelByNameTask) Action() Action { return ActionCancelByName }

func (t CancelByNameTask) String() string {
	return fmt.Sprintf("cancel_by_name name=%q", t.Name)
}
