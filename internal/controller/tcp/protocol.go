package tcp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/slot_booking/internal/model"
)

// Verb команда строчного протокола
type Verb string

const (
	VerbList       Verb = "LIST"
	VerbBook       Verb = "BOOK"
	VerbCancelID   Verb = "CANCEL_ID"
	VerbCancelName Verb = "CANCEL_NAME"
	VerbHelp       Verb = "HELP"
	VerbQuit       Verb = "QUIT"
	VerbUnknown    Verb = ""
)

const (
	usageBook       = "BOOK id|name|service"
	usageCancelID   = "CANCEL_ID id"
	usageCancelName = "CANCEL_NAME name"
)

// Command разобранная строка. Для записи Task уже проверен и готов к постановке в очередь.
type Command struct {
	Verb Verb
	Date string     // только LIST
	Task model.Task // BOOK, CANCEL_ID, CANCEL_NAME
	Raw  string
}

// ParseError ошибка формата команды, отправляется клиенту как есть
type ParseError struct {
	Verb  Verb
	Usage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Invalid %s format. Use: %s. Error: %v", e.Verb, e.Usage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseCommand разбирает одну строку без завершающего перевода строки.
// Глагол регистронезависим, аргументы разделены пробелами,
// кроме BOOK и CANCEL_NAME, которые берут весь остаток строки.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	cmd := Command{Raw: line}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return cmd, nil
	}

	rest := strings.TrimSpace(line[len(fields[0]):])

	switch strings.ToUpper(fields[0]) {
	case "LIST":
		cmd.Verb = VerbList
		if len(fields) > 1 {
			cmd.Date = fields[1]
		}

	case "BOOK":
		cmd.Verb = VerbBook
		task, err := parseBook(rest)
		if err != nil {
			return cmd, &ParseError{Verb: VerbBook, Usage: usageBook, Err: err}
		}
		cmd.Task = task

	case "CANCEL_ID":
		cmd.Verb = VerbCancelID
		if len(fields) < 2 {
			return cmd, &ParseError{Verb: VerbCancelID, Usage: usageCancelID, Err: errors.New("missing slot id")}
		}
		id, err := parseSlotID(fields[1])
		if err != nil {
			return cmd, &ParseError{Verb: VerbCancelID, Usage: usageCancelID, Err: err}
		}
		cmd.Task = model.CancelByIDTask{SlotID: id}

	case "CANCEL_NAME":
		cmd.Verb = VerbCancelName
		if rest == "" {
			return cmd, &ParseError{Verb: VerbCancelName, Usage: usageCancelName, Err: errors.New("empty name")}
		}
		cmd.Task = model.CancelByNameTask{Name: rest}

	case "HELP", "?":
		cmd.Verb = VerbHelp

	case "QUIT", "EXIT":
		cmd.Verb = VerbQuit

	default:
		cmd.Verb = VerbUnknown
	}

	return cmd, nil
}

func parseBook(rest string) (model.BookTask, error) {
	parts := strings.SplitN(rest, "|", 3)
	if len(parts) != 3 {
		return model.BookTask{}, fmt.Errorf("expected 3 fields separated by '|', got %d", len(parts))
	}

	id, err := parseSlotID(parts[0])
	if err != nil {
		return model.BookTask{}, err
	}

	name := strings.TrimSpace(parts[1])
	if name == "" {
		return model.BookTask{}, errors.New("empty name")
	}
	if utf8.RuneCountInString(name) > model.MaxCustomerNameLength {
		return model.BookTask{}, fmt.Errorf("name longer than %d characters", model.MaxCustomerNameLength)
	}

	return model.BookTask{
		SlotID:  id,
		Name:    name,
		Service: strings.TrimSpace(parts[2]),
	}, nil
}

func parseSlotID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("slot id %q is not an integer", strings.TrimSpace(raw))
	}
	if id <= 0 {
		return 0, fmt.Errorf("slot id must be positive, got %d", id)
	}
	return id, nil
}
