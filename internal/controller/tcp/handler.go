package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/Freeeeeet/slot_booking/internal/formatting"
	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgWelcome         = "Welcome to the appointment server. Type HELP for the command list.\n"
	msgNoSlots         = "No available slots.\n"
	msgBookQueued      = "Booking queued. The worker will process it shortly.\n"
	msgCancelIDQueued  = "Cancellation by ID queued.\n"
	msgCancelNameQueue = "Cancellation by name queued.\n"
	msgGoodbye         = "Goodbye\n"
	msgUnknown         = "Unrecognized command. Type HELP for the command list.\n"
)

const helpText = `Available commands:

  LIST [date]
     List free slots, optionally for one day.
     Example: LIST
              LIST 2026-03-01

  BOOK id|name|service
     Book a slot.
     Example: BOOK 1|Juan Perez|Corte

  CANCEL_ID id
     Cancel the booking of a slot.
     Example: CANCEL_ID 5

  CANCEL_NAME name
     Cancel every booking of a customer.
     Example: CANCEL_NAME Juan Perez

  HELP or ?
     Show this help.

  QUIT or EXIT
     Close the connection.

Bookings and cancellations are queued and applied in order;
a LIST right after BOOK may still show the slot as free.
`

// SlotReader синхронное чтение свободных слотов
type SlotReader interface {
	ListAvailable(ctx context.Context, date string) []*model.Slot
}

// TaskQueue очередь задач записи
type TaskQueue interface {
	Put(task model.Task, source string) uuid.UUID
}

// Handler обслуживает одно TCP-соединение. Состояния сессии нет:
// каждая строка - независимая команда.
type Handler struct {
	reader SlotReader
	tasks  TaskQueue
	logger *zap.Logger
}

func NewHandler(reader SlotReader, tasks TaskQueue, logger *zap.Logger) *Handler {
	return &Handler{
		reader: reader,
		tasks:  tasks,
		logger: logger,
	}
}

// Serve читает команды до QUIT, EOF или ошибки сокета и закрывает соединение
func (h *Handler) Serve(ctx context.Context, conn net.Conn) {
	client := conn.RemoteAddr().String()
	logger := h.logger.With(zap.String("client", client))
	logger.Info("Client connected")

	defer func() {
		conn.Close()
		logger.Info("Client disconnected")
	}()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	if err := writeAndFlush(w, msgWelcome); err != nil {
		logger.Warn("Failed to send welcome", zap.Error(err))
		return
	}

	for {
		// неполная строка остаётся в буфере reader до следующего чтения
		line, err := r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("Connection read error", zap.Error(err))
			}
			return
		}

		reply, quit := h.Execute(ctx, client, line)
		if reply == "" {
			continue
		}

		if err := writeAndFlush(w, reply); err != nil {
			logger.Warn("Connection write error", zap.Error(err))
			return
		}

		if quit {
			return
		}
	}
}

// Execute выполняет одну строку и возвращает ответ клиенту.
// Чтение идёт напрямую в сервис, запись - только через очередь.
func (h *Handler) Execute(ctx context.Context, client, line string) (reply string, quit bool) {
	cmd, err := ParseCommand(line)
	if cmd.Raw == "" {
		return "", false
	}

	logger := h.logger.With(zap.String("client", client))
	logger.Debug("Command received", zap.String("command", cmd.Raw))

	if err != nil {
		logger.Warn("Invalid command", zap.String("verb", string(cmd.Verb)), zap.Error(err))
		return err.Error() + "\n", false
	}

	switch cmd.Verb {
	case VerbList:
		slots := h.reader.ListAvailable(ctx, cmd.Date)
		logger.Info("Slots listed", zap.String("date", cmd.Date), zap.Int("count", len(slots)))
		if len(slots) == 0 {
			return msgNoSlots, false
		}
		var b strings.Builder
		for _, slot := range slots {
			b.WriteString(formatting.FormatSlot(slot))
			b.WriteByte('\n')
		}
		return b.String(), false

	case VerbBook, VerbCancelID, VerbCancelName:
		taskID := h.tasks.Put(cmd.Task, client)
		logger.Info("Task queued",
			zap.Stringer("task_id", taskID),
			zap.String("action", string(cmd.Task.Action())),
			zap.Stringer("task", cmd.Task),
		)
		switch cmd.Verb {
		case VerbBook:
			return msgBookQueued, false
		case VerbCancelID:
			return msgCancelIDQueued, false
		default:
			return msgCancelNameQueue, false
		}

	case VerbHelp:
		return helpText, false

	case VerbQuit:
		logger.Info("Client quit")
		return msgGoodbye, true

	default:
		logger.Warn("Unrecognized command", zap.String("command", cmd.Raw))
		return msgUnknown, false
	}
}

func writeAndFlush(w *bufio.Writer, s string) error {
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	return w.Flush()
}
