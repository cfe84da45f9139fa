package tcp

import (
	"errors"
	"strings"
	"testing"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		verb Verb
		date string
		task model.Task
	}{
		{name: "list", line: "LIST", verb: VerbList},
		{name: "list lower with date", line: "list 2026-03-01", verb: VerbList, date: "2026-03-01"},
		{name: "book", line: "BOOK 3|Juan|Corte", verb: VerbBook,
			task: model.BookTask{SlotID: 3, Name: "Juan", Service: "Corte"}},
		{name: "book spaces in name", line: "Book  12 | Juan Perez | Corte y barba ", verb: VerbBook,
			task: model.BookTask{SlotID: 12, Name: "Juan Perez", Service: "Corte y barba"}},
		{name: "book pipe in service", line: "BOOK 1|Ana|Corte|Extra", verb: VerbBook,
			task: model.BookTask{SlotID: 1, Name: "Ana", Service: "Corte|Extra"}},
		{name: "book empty service", line: "BOOK 1|Ana|", verb: VerbBook,
			task: model.BookTask{SlotID: 1, Name: "Ana"}},
		{name: "book accented name at limit", line: "BOOK 2|" + strings.Repeat("ñ", model.MaxCustomerNameLength) + "|Corte", verb: VerbBook,
			task: model.BookTask{SlotID: 2, Name: strings.Repeat("ñ", model.MaxCustomerNameLength), Service: "Corte"}},
		{name: "cancel id", line: "cancel_id 5", verb: VerbCancelID, task: model.CancelByIDTask{SlotID: 5}},
		{name: "cancel name", line: "CANCEL_NAME Juan Perez", verb: VerbCancelName,
			task: model.CancelByNameTask{Name: "Juan Perez"}},
		{name: "help", line: "help", verb: VerbHelp},
		{name: "question mark", line: "?", verb: VerbHelp},
		{name: "quit", line: "QUIT", verb: VerbQuit},
		{name: "exit", line: "exit", verb: VerbQuit},
		{name: "unknown", line: "DANCE now", verb: VerbUnknown},
		{name: "carriage return", line: "LIST\r\n", verb: VerbList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.verb, cmd.Verb)
			assert.Equal(t, tt.date, cmd.Date)
			assert.Equal(t, tt.task, cmd.Task)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		verb  Verb
		usage string
	}{
		{name: "book no pipes", line: "BOOK 3 Juan Corte", verb: VerbBook, usage: usageBook},
		{name: "book two fields", line: "BOOK 3|Juan", verb: VerbBook, usage: usageBook},
		{name: "book bad id", line: "BOOK x|Juan|Corte", verb: VerbBook, usage: usageBook},
		{name: "book zero id", line: "BOOK 0|Juan|Corte", verb: VerbBook, usage: usageBook},
		{name: "book empty name", line: "BOOK 3| |Corte", verb: VerbBook, usage: usageBook},
		{name: "book long name", line: "BOOK 3|" + strings.Repeat("a", 129) + "|Corte", verb: VerbBook, usage: usageBook},
		{name: "book long accented name", line: "BOOK 3|" + strings.Repeat("ñ", 129) + "|Corte", verb: VerbBook, usage: usageBook},
		{name: "book nothing", line: "BOOK", verb: VerbBook, usage: usageBook},
		{name: "cancel id missing", line: "CANCEL_ID", verb: VerbCancelID, usage: usageCancelID},
		{name: "cancel id not int", line: "CANCEL_ID five", verb: VerbCancelID, usage: usageCancelID},
		{name: "cancel name empty", line: "CANCEL_NAME   ", verb: VerbCancelName, usage: usageCancelName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.line)
			require.Error(t, err)
			assert.Nil(t, cmd.Task)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.verb, parseErr.Verb)
			assert.Contains(t, err.Error(), "Use: "+tt.usage)
		})
	}
}

func TestParseCommandBlank(t *testing.T) {
	cmd, err := ParseCommand("   \r\n")
	require.NoError(t, err)
	assert.Equal(t, "", cmd.Raw)
	assert.Nil(t, cmd.Task)
}
